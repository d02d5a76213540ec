package publish

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jomei/notionapi"
)

// NotionAPI implements Workspace over the Notion REST API.
type NotionAPI struct {
	client *notionapi.Client
}

// NewNotionAPI returns nil when token is empty.
func NewNotionAPI(token string, hc *http.Client) *NotionAPI {
	if token == "" {
		return nil
	}
	opts := []notionapi.ClientOption{notionapi.WithRetry(3)}
	if hc != nil {
		opts = append(opts, notionapi.WithHTTPClient(hc))
	}
	return &NotionAPI{client: notionapi.NewClient(notionapi.Token(token), opts...)}
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}}
}

func (a *NotionAPI) SetPageTitle(ctx context.Context, pageID, title string) error {
	_, err := a.client.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			"title": notionapi.TitleProperty{Type: notionapi.PropertyTypeTitle, Title: richText(title)},
		},
	})
	return err
}

func (a *NotionAPI) AppendHeading(ctx context.Context, pageID string, level int, text string) error {
	heading := notionapi.Heading{RichText: richText(text)}
	var block notionapi.Block
	switch level {
	case 1:
		block = &notionapi.Heading1Block{
			BasicBlock: notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeHeading1},
			Heading1:   heading,
		}
	case 2:
		block = &notionapi.Heading2Block{
			BasicBlock: notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeHeading2},
			Heading2:   heading,
		}
	default:
		block = &notionapi.Heading3Block{
			BasicBlock: notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeHeading3},
			Heading3:   heading,
		}
	}
	_, err := a.client.Block.AppendChildren(ctx, notionapi.BlockID(pageID), &notionapi.AppendBlockChildrenRequest{
		Children: []notionapi.Block{block},
	})
	return err
}

func (a *NotionAPI) CreateDatabase(ctx context.Context, pageID, title string, columns []Column) (string, error) {
	props := make(notionapi.PropertyConfigs, len(columns))
	for _, c := range columns {
		switch c.Kind {
		case ColumnTitle:
			props[c.Name] = notionapi.TitlePropertyConfig{Type: notionapi.PropertyConfigTypeTitle}
		case ColumnText:
			props[c.Name] = notionapi.RichTextPropertyConfig{Type: notionapi.PropertyConfigTypeRichText}
		case ColumnNumber:
			props[c.Name] = notionapi.NumberPropertyConfig{Type: notionapi.PropertyConfigTypeNumber}
		case ColumnDate:
			props[c.Name] = notionapi.DatePropertyConfig{Type: notionapi.PropertyConfigTypeDate}
		case ColumnURL:
			props[c.Name] = notionapi.URLPropertyConfig{Type: notionapi.PropertyConfigTypeURL}
		}
	}
	db, err := a.client.Database.Create(ctx, &notionapi.DatabaseCreateRequest{
		Parent:     notionapi.Parent{Type: notionapi.ParentTypePageID, PageID: notionapi.PageID(pageID)},
		Title:      richText(title),
		Properties: props,
		IsInline:   true,
	})
	if err != nil {
		return "", err
	}
	return string(db.ID), nil
}

func (a *NotionAPI) AddRow(ctx context.Context, databaseID string, columns []Column, row Row) error {
	props := make(notionapi.Properties, len(columns))
	for _, c := range columns {
		v, ok := row[c.Name]
		if !ok || v == nil {
			continue
		}
		switch c.Kind {
		case ColumnNumber:
			n, ok := v.(float64)
			if !ok {
				return fmt.Errorf("column %s: want number, got %T", c.Name, v)
			}
			props[c.Name] = notionapi.NumberProperty{Type: notionapi.PropertyTypeNumber, Number: n}
			continue
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("column %s: want string, got %T", c.Name, v)
		}
		if s == "" && c.Kind != ColumnTitle {
			continue
		}
		switch c.Kind {
		case ColumnTitle:
			props[c.Name] = notionapi.TitleProperty{Type: notionapi.PropertyTypeTitle, Title: richText(s)}
		case ColumnText:
			props[c.Name] = notionapi.RichTextProperty{Type: notionapi.PropertyTypeRichText, RichText: richText(s)}
		case ColumnURL:
			props[c.Name] = notionapi.URLProperty{Type: notionapi.PropertyTypeURL, URL: s}
		case ColumnDate:
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				continue
			}
			start := notionapi.Date(t)
			props[c.Name] = notionapi.DateProperty{
				Type: notionapi.PropertyTypeDate,
				Date: &notionapi.DateObject{Start: &start},
			}
		}
	}
	_, err := a.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: notionapi.DatabaseID(databaseID)},
		Properties: props,
	})
	return err
}
