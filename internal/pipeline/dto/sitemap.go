package dto

import "encoding/xml"

// Sitemap XML schema, including the Google News extension fields that news
// sitemaps attach to each URL entry.

// URLSet is a <urlset> sitemap document.
type URLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapURL is one <url> entry.
type SitemapURL struct {
	Loc     string    `xml:"loc"`
	LastMod string    `xml:"lastmod"`
	News    *NewsMeta `xml:"http://www.google.com/schemas/sitemap-news/0.9 news"`
}

// NewsMeta is the <news:news> extension block.
type NewsMeta struct {
	Publication     NewsPublication `xml:"http://www.google.com/schemas/sitemap-news/0.9 publication"`
	PublicationDate string          `xml:"http://www.google.com/schemas/sitemap-news/0.9 publication_date"`
	Title           string          `xml:"http://www.google.com/schemas/sitemap-news/0.9 title"`
}

// NewsPublication carries the publication name and language.
type NewsPublication struct {
	Name     string `xml:"http://www.google.com/schemas/sitemap-news/0.9 name"`
	Language string `xml:"http://www.google.com/schemas/sitemap-news/0.9 language"`
}

// SitemapIndex is a <sitemapindex> document pointing at child sitemaps.
type SitemapIndex struct {
	XMLName  xml.Name          `xml:"sitemapindex"`
	Sitemaps []SitemapIndexRef `xml:"sitemap"`
}

// SitemapIndexRef is one child sitemap reference.
type SitemapIndexRef struct {
	Loc string `xml:"loc"`
}
