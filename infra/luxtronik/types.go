package luxtronik

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/hweijer/tapplan/core/model"
)

// Navigation is the menu tree the heatpump returns after login. Pages are
// addressed by hex ids and located by their localized names.
type Navigation struct {
	XMLName xml.Name         `xml:"Navigation"`
	ID      string           `xml:"id,attr"`
	Items   []NavigationItem `xml:"item"`
}

// NavigationItem is one node of the menu tree.
type NavigationItem struct {
	ID    string           `xml:"id,attr"`
	Name  string           `xml:"name"`
	Items []NavigationItem `xml:"item"`
}

// ItemID resolves a " > " separated menu path to the page id.
func (n Navigation) ItemID(path string) (string, error) {
	items := n.Items
	id := ""
	for _, part := range strings.Split(path, " > ") {
		found := false
		for _, item := range items {
			if item.Name == part {
				found = true
				id = item.ID
				items = item.Items
				break
			}
		}
		if !found {
			return "", fmt.Errorf("navigation item %q does not exist", part)
		}
	}
	return id, nil
}

// Content is the payload of a GET response: the items of one menu page.
type Content struct {
	XMLName xml.Name      `xml:"Content"`
	Name    string        `xml:"name"`
	Items   []ContentItem `xml:"item"`
}

// ContentItem is one settable or readable value on a page.
type ContentItem struct {
	ID    string        `xml:"id,attr"`
	Name  string        `xml:"name"`
	Value string        `xml:"value"`
	Type  string        `xml:"type"`
	Raw   string        `xml:"raw"`
	Items []ContentItem `xml:"item"`
}

// Item finds a content item by name, descending into nested items.
func (c Content) Item(name string) (ContentItem, bool) {
	return findItem(c.Items, name)
}

func findItem(items []ContentItem, name string) (ContentItem, bool) {
	for _, item := range items {
		if item.Name == name {
			return item, true
		}
		if found, ok := findItem(item.Items, name); ok {
			return found, true
		}
	}
	return ContentItem{}, false
}

// encodeTimer packs a daily timer window into the device's raw format: the
// till minute-of-day in the upper 16 bits, the from minute in the lower.
// "10:00 - 00:00" therefore encodes to 600 and "00:00 - 03:00" to 11796480.
func encodeTimer(from, till model.ClockTime) int {
	fromMin := from.Hour*60 + from.Minute
	tillMin := till.Hour*60 + till.Minute
	return tillMin<<16 | fromMin
}

// decodeTimer is the inverse of encodeTimer.
func decodeTimer(raw int) (from, till model.ClockTime) {
	fromMin := raw & 0xffff
	tillMin := raw >> 16
	return model.ClockTime{Hour: fromMin / 60, Minute: fromMin % 60},
		model.ClockTime{Hour: tillMin / 60, Minute: tillMin % 60}
}
