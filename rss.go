package folio

import (
	"encoding/xml"
	"time"

	"github.com/labstack/echo/v4"
)

const feedSize = 20

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
}

func buildFeed(cfg SiteConfig, posts []Post) rssXML {
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := PostURL(cfg.URL, p)
		var cats []string
		if p.CategoryName != "" {
			cats = append(cats, p.CategoryName)
		}
		for _, t := range p.Tags {
			cats = append(cats, t.Name)
		}
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: firstNonEmpty(p.Summary, p.MetaDescription),
			Author:      p.AuthorName,
			Categories:  cats,
			PubDate:     p.CreatedAt.UTC().Format(time.RFC1123Z),
			GUID:        postURL,
		})
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name,
			Link:        BuildURL(cfg.URL),
			Description: cfg.Description,
			Items:       items,
		},
	}
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Store.RecentPosts(c.Request().Context(), PostFilter{PublishedOnly: true}, feedSize)
	if err != nil {
		return err
	}
	return writeXML(c, "application/rss+xml; charset=utf-8", buildFeed(a.Config, posts))
}
