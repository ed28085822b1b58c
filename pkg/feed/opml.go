package feed

import (
	"encoding/xml"

	"github.com/pkg/errors"

	"github.com/mxpv/pcasts/pkg/model"
)

type opml struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    head
	Body    body
}

type head struct {
	XMLName xml.Name `xml:"head"`
	Title   string   `xml:"title"`
}

type body struct {
	XMLName  xml.Name  `xml:"body"`
	Outlines []outline `xml:"outline"`
}

type outline struct {
	Text    string `xml:"text,attr"`
	Title   string `xml:"title,attr"`
	Type    string `xml:"type,attr"`
	XMLURL  string `xml:"xmlUrl,attr"`
	HTMLURL string `xml:"htmlUrl,attr,omitempty"`
}

// BuildOPML exports subscriptions as an OPML outline list.
func BuildOPML(subscriptions []model.Subscription) (string, error) {
	ou := make([]outline, 0, len(subscriptions))
	for _, sub := range subscriptions {
		ou = append(ou, outline{
			Text:    sub.Title,
			Title:   sub.Title,
			Type:    "rss",
			XMLURL:  sub.FeedURL,
			HTMLURL: sub.SiteURL,
		})
	}

	op := opml{Version: "1.0"}
	op.Head = head{Title: "Podcast subscriptions"}
	op.Body = body{Outlines: ou}

	out, err := xml.MarshalIndent(op, "", "\t")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal opml")
	}

	return xml.Header + string(out), nil
}
