package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"wikiadmin/internal/models"
	"wikiadmin/internal/repository"
	"wikiadmin/internal/validation"
)

// multiTextItem and multiContentItem fix the key order of the flat value so
// that a value read back is byte-identical to a well-formed value written.
type multiTextItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Link    string `json:"link"`
}

type multiContentItem struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
	Link     string `json:"link"`
}

// multiContentInput also accepts "url" for the image, as older clients send it.
type multiContentInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
	URL      string `json:"url"`
	Link     string `json:"link"`
}

// DecodeValue parses the flat API value of a config of type t into the rows
// of its satellite table. Singular types take the raw string. Multi types
// take a JSON array, given either directly or as a JSON-encoded string; an
// empty or absent value is an empty array.
func DecodeValue(t models.ConfigType, raw json.RawMessage) (repository.ConfigValue, error) {
	var out repository.ConfigValue
	if !t.Valid() {
		return out, models.NewValidationError(fmt.Sprintf("type: unsupported config type %q", t))
	}

	text, isString, err := unwrapString(raw)
	if err != nil {
		return out, err
	}

	if !t.IsMulti() {
		if !isString && len(bytes.TrimSpace(raw)) > 0 && !isNull(raw) {
			return out, models.NewValidationError("value: must be a string")
		}
		if t == models.ConfigTypeRichText {
			text = validation.SanitizeRichText(text)
		}
		out.Text = text
		return out, nil
	}

	payload := []byte(text)
	if !isString {
		payload = bytes.TrimSpace(raw)
	}
	if len(bytes.TrimSpace(payload)) == 0 || isNull(payload) {
		return out, nil
	}

	switch t {
	case models.ConfigTypeMultiImage:
		var items []json.RawMessage
		if err := json.Unmarshal(payload, &items); err != nil {
			return out, models.NewValidationError("value: must be a JSON array of image URLs")
		}
		out.Images = make([]models.ConfigMultiImageValue, 0, len(items))
		for _, item := range items {
			var url string
			if err := json.Unmarshal(item, &url); err != nil {
				var obj struct {
					URL string `json:"url"`
				}
				if err := json.Unmarshal(item, &obj); err != nil {
					return out, models.NewValidationError("value: image items must be URL strings")
				}
				url = obj.URL
			}
			if strings.TrimSpace(url) == "" {
				return out, models.NewValidationError("value: image items cannot be empty")
			}
			out.Images = append(out.Images, models.ConfigMultiImageValue{URL: url})
		}

	case models.ConfigTypeMultiText:
		var items []multiTextItem
		if err := json.Unmarshal(payload, &items); err != nil {
			return out, models.NewValidationError("value: must be a JSON array of {title, content, link}")
		}
		out.Texts = make([]models.ConfigMultiTextValue, 0, len(items))
		for _, item := range items {
			out.Texts = append(out.Texts, models.ConfigMultiTextValue{Title: item.Title, Content: item.Content, Link: item.Link})
		}

	case models.ConfigTypeMultiContent:
		var items []multiContentInput
		if err := json.Unmarshal(payload, &items); err != nil {
			return out, models.NewValidationError("value: must be a JSON array of {title, content, imageUrl, link}")
		}
		out.Contents = make([]models.ConfigMultiContentValue, 0, len(items))
		for _, item := range items {
			image := item.ImageURL
			if image == "" {
				image = item.URL
			}
			out.Contents = append(out.Contents, models.ConfigMultiContentValue{
				Title:    item.Title,
				Content:  item.Content,
				ImageURL: image,
				Link:     item.Link,
			})
		}
	}
	return out, nil
}

// EncodeValue flattens the satellite rows loaded on cfg into the API value:
// the raw string for singular types, a JSON array ordered by sort for multi
// types. A multi config with no rows encodes as "[]".
func EncodeValue(cfg *models.Config) (string, error) {
	switch cfg.Type {
	case models.ConfigTypeText, models.ConfigTypeTextarea, models.ConfigTypeRichText:
		if cfg.TextValue == nil {
			return "", nil
		}
		return cfg.TextValue.Value, nil

	case models.ConfigTypeImage:
		if cfg.ImageValue == nil {
			return "", nil
		}
		return cfg.ImageValue.URL, nil

	case models.ConfigTypeMultiImage:
		urls := make([]string, 0, len(cfg.MultiImageValues))
		for _, row := range cfg.MultiImageValues {
			urls = append(urls, row.URL)
		}
		return marshalValue(urls)

	case models.ConfigTypeMultiText:
		items := make([]multiTextItem, 0, len(cfg.MultiTextValues))
		for _, row := range cfg.MultiTextValues {
			items = append(items, multiTextItem{Title: row.Title, Content: row.Content, Link: row.Link})
		}
		return marshalValue(items)

	case models.ConfigTypeMultiContent:
		items := make([]multiContentItem, 0, len(cfg.MultiContentValues))
		for _, row := range cfg.MultiContentValues {
			items = append(items, multiContentItem{Title: row.Title, Content: row.Content, ImageURL: row.ImageURL, Link: row.Link})
		}
		return marshalValue(items)
	}
	return "", models.NewInternalError(fmt.Errorf("config %d has unknown type %q", cfg.ID, cfg.Type))
}

func marshalValue(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// Links and HTML content must survive the round trip unescaped.
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", models.NewInternalError(err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// unwrapString reports whether raw is a JSON string and returns its contents.
func unwrapString(raw json.RawMessage) (string, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false, models.NewValidationError("value: malformed string")
	}
	return s, true, nil
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
