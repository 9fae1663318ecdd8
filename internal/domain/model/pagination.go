package model

import "time"

// Page is one renderable help page.
type Page struct {
	Title  string      `json:"title"`
	Body   string      `json:"body"`
	Fields []PageField `json:"fields,omitempty"`
}

type PageField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PaginationView is one in-flight browse session over a fixed page list.
type PaginationView struct {
	Key             string    `json:"key"`
	AnchorChannelID string    `json:"anchor_channel_id"`
	OwnerID         string    `json:"owner_id"`
	Pages           []Page    `json:"pages"`
	Index           int       `json:"index"`
	CreatedAt       time.Time `json:"created_at"`
	Deadline        time.Time `json:"deadline"`
}

func NewPaginationView(ownerID string, pages []Page, window time.Duration) PaginationView {
	now := time.Now().UTC()
	return PaginationView{
		OwnerID:   ownerID,
		Pages:     pages,
		CreatedAt: now,
		Deadline:  now.Add(window),
	}
}

func (v PaginationView) WithAnchor(messageID, channelID string) PaginationView {
	v.Key = messageID
	v.AnchorChannelID = channelID
	return v
}

// Move shifts the index by delta, clamped to the page bounds. It reports
// whether the index changed.
func (v PaginationView) Move(delta int) (PaginationView, bool) {
	next := v.Index + delta
	if next < 0 {
		next = 0
	}
	if last := len(v.Pages) - 1; next > last {
		next = max(last, 0)
	}
	if next == v.Index {
		return v, false
	}
	v.Index = next
	return v, true
}

func (v PaginationView) Current() Page {
	if len(v.Pages) == 0 {
		return Page{}
	}
	return v.Pages[v.Index]
}

func (v PaginationView) HasPrev() bool { return v.Index > 0 }

func (v PaginationView) HasNext() bool { return v.Index < len(v.Pages)-1 }
