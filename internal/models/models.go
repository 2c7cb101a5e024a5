package models

import (
	"fmt"
	"slices"
)

// Post is a single listing entry exactly as Reddit returned it.
// Numbers are kept as json.Number so they are written back unchanged.
type Post map[string]any

// Listing is a named ordering of a subreddit's posts.
type Listing string

const (
	ListingHot Listing = "hot"
	ListingNew Listing = "new"
	ListingTop Listing = "top"
)

// Listings lists every ordering the listing endpoint accepts.
var Listings = []Listing{ListingHot, ListingNew, ListingTop}

func (l Listing) Valid() bool {
	return slices.Contains(Listings, l)
}

func ParseListing(s string) (Listing, error) {
	l := Listing(s)
	if !l.Valid() {
		return "", fmt.Errorf("invalid listing %q (choose from hot, new, top)", s)
	}
	return l, nil
}

// TimeWindow restricts the "top" listing to a period.
type TimeWindow string

const (
	WindowHour  TimeWindow = "hour"
	WindowDay   TimeWindow = "day"
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
	WindowYear  TimeWindow = "year"
	WindowAll   TimeWindow = "all"
)

var TimeWindows = []TimeWindow{WindowHour, WindowDay, WindowWeek, WindowMonth, WindowYear, WindowAll}

func (w TimeWindow) Valid() bool {
	return slices.Contains(TimeWindows, w)
}

func ParseTimeWindow(s string) (TimeWindow, error) {
	w := TimeWindow(s)
	if !w.Valid() {
		return "", fmt.Errorf("invalid time window %q (choose from hour, day, week, month, year, all)", s)
	}
	return w, nil
}

// Page is one decoded listing response.
type Page struct {
	// Posts in server order
	Posts []Post
	// After is the cursor for the next page, empty when there is none
	After string
}
