package wiki

import (
	"context"
	"daily-shoutout/internal/types"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when the requested page or entity does not exist
var ErrNotFound = errors.New("not found")

type randomResponse struct {
	Query struct {
		Random []struct {
			ID    int64  `json:"id"`
			NS    int    `json:"ns"`
			Title string `json:"title"`
		} `json:"random"`
	} `json:"query"`
}

type pagesResponse struct {
	Query struct {
		Pages []struct {
			PageID    int64            `json:"pageid"`
			Title     string           `json:"title"`
			Missing   bool             `json:"missing"`
			Extract   string           `json:"extract"`
			Thumbnail *types.Thumbnail `json:"thumbnail"`
			PageProps *struct {
				WikibaseItem string `json:"wikibase_item"`
			} `json:"pageprops"`
		} `json:"pages"`
	} `json:"query"`
}

type entityResponse struct {
	Entities map[string]struct {
		ID     string `json:"id"`
		Claims map[string][]struct {
			MainSnak struct {
				SnakType  string `json:"snaktype"`
				DataValue *struct {
					Type  string          `json:"type"`
					Value json.RawMessage `json:"value"`
				} `json:"datavalue"`
			} `json:"mainsnak"`
		} `json:"claims"`
	} `json:"entities"`
}

func decode(body []byte, out interface{}) error {
	return json.Unmarshal(body, out)
}

// PageDetails fetches the intro extract, thumbnail and Wikidata id of a page
func (c *Client) PageDetails(ctx context.Context, title string) (*types.Page, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", title)
	params.Set("prop", "extracts|pageimages|pageprops")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("pithumbsize", "300")
	params.Set("format", "json")
	params.Set("formatversion", "2")

	var resp pagesResponse
	if err := c.getJSON(ctx, "page", c.apiURL(params), &resp); err != nil {
		return nil, errors.Wrapf(err, "page details for %q", title)
	}

	if len(resp.Query.Pages) == 0 || resp.Query.Pages[0].Missing {
		return nil, errors.Wrapf(ErrNotFound, "page %q", title)
	}

	p := resp.Query.Pages[0]
	page := &types.Page{
		Title:   p.Title,
		Extract: p.Extract,
	}
	if page.Title == "" {
		page.Title = title
	}
	if p.Thumbnail != nil && p.Thumbnail.Source != "" {
		page.Thumbnail = p.Thumbnail
	}
	if p.PageProps != nil {
		page.WikidataID = p.PageProps.WikibaseItem
	}
	return page, nil
}

// Entity fetches a Wikidata item and extracts its "instance of" (P31) values
func (c *Client) Entity(ctx context.Context, id string) (*types.Entity, error) {
	var resp entityResponse
	if err := c.getJSON(ctx, "entity", c.entityURL(id), &resp); err != nil {
		return nil, errors.Wrapf(err, "entity %s", id)
	}

	raw, ok := resp.Entities[id]
	if !ok {
		// redirected items are keyed by their new id
		if len(resp.Entities) != 1 {
			return nil, errors.Wrapf(ErrNotFound, "entity %s", id)
		}
		for _, e := range resp.Entities {
			raw = e
		}
	}

	entity := &types.Entity{ID: raw.ID}
	if entity.ID == "" {
		entity.ID = id
	}
	for _, claim := range raw.Claims[instanceOfProperty] {
		dv := claim.MainSnak.DataValue
		if claim.MainSnak.SnakType != "value" || dv == nil || dv.Type != "wikibase-entityid" {
			continue
		}
		var value struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(dv.Value, &value); err != nil || value.ID == "" {
			continue
		}
		entity.InstanceOf = append(entity.InstanceOf, value.ID)
	}
	return entity, nil
}

const instanceOfProperty = "P31"
