package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Family groups feeds that share a transport mode and upstream behavior.
type Family string

const (
	FamilySubway Family = "SUBWAY"
	FamilyRail   Family = "RAIL"
	FamilyAlert  Family = "ALERT"
)

func (f Family) String() string { return string(f) }

func (f Family) IsValid() bool {
	switch f {
	case FamilySubway, FamilyRail, FamilyAlert:
		return true
	}
	return false
}

func ParseFamilyFromString(s string) (Family, error) {
	fam := Family(strings.ToUpper(strings.TrimSpace(s)))
	if !fam.IsValid() {
		return "", fmt.Errorf("%w: invalid feed family %q", ErrValidation, s)
	}
	return fam, nil
}

// FeedSource identifies one GTFS-realtime endpoint to poll.
type FeedSource struct {
	Name   string
	URL    string
	Family Family
}

func (f FeedSource) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: feed name is required", ErrValidation)
	}
	if _, err := url.ParseRequestURI(f.URL); err != nil {
		return fmt.Errorf("%w: invalid feed url for %q: %v", ErrValidation, f.Name, err)
	}
	if !f.Family.IsValid() {
		return fmt.Errorf("%w: invalid family %q for feed %q", ErrValidation, f.Family, f.Name)
	}
	return nil
}

// Catalog is the immutable set of feeds a collector polls. It is built once
// at startup and passed into the poller; changing it requires a restart.
type Catalog []FeedSource

func (c Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for _, feed := range c {
		if err := feed.Validate(); err != nil {
			return err
		}
		if _, dup := seen[feed.Name]; dup {
			return fmt.Errorf("%w: duplicate feed name %q", ErrValidation, feed.Name)
		}
		seen[feed.Name] = struct{}{}
	}
	return nil
}

const mtaFeedBase = "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/"

// DefaultCatalog returns the MTA GTFS-realtime feed set: subway lines, the
// two commuter railroads, and the service-alert feeds.
func DefaultCatalog() Catalog {
	return Catalog{
		{Name: "Subway-ACE", URL: mtaFeedBase + "nyct%2Fgtfs-ace", Family: FamilySubway},
		{Name: "Subway-BDFM", URL: mtaFeedBase + "nyct%2Fgtfs-bdfm", Family: FamilySubway},
		{Name: "Subway-G", URL: mtaFeedBase + "nyct%2Fgtfs-g", Family: FamilySubway},
		{Name: "Subway-JZ", URL: mtaFeedBase + "nyct%2Fgtfs-jz", Family: FamilySubway},
		{Name: "Subway-NQRW", URL: mtaFeedBase + "nyct%2Fgtfs-nqrw", Family: FamilySubway},
		{Name: "Subway-L", URL: mtaFeedBase + "nyct%2Fgtfs-l", Family: FamilySubway},
		{Name: "Subway-1234567S", URL: mtaFeedBase + "nyct%2Fgtfs", Family: FamilySubway},
		{Name: "Subway-SIR", URL: mtaFeedBase + "nyct%2Fgtfs-si", Family: FamilySubway},
		{Name: "LIRR", URL: mtaFeedBase + "lirr%2Fgtfs-lirr", Family: FamilyRail},
		{Name: "MNR", URL: mtaFeedBase + "mnr%2Fgtfs-mnr", Family: FamilyRail},
		{Name: "All-Alerts", URL: mtaFeedBase + "camsys%2Fall-alerts", Family: FamilyAlert},
		{Name: "Subway-Alerts", URL: mtaFeedBase + "camsys%2Fsubway-alerts", Family: FamilyAlert},
		{Name: "Bus-Alerts", URL: mtaFeedBase + "camsys%2Fbus-alerts", Family: FamilyAlert},
		{Name: "LIRR-Alerts", URL: mtaFeedBase + "camsys%2Flirr-alerts", Family: FamilyAlert},
		{Name: "MNR-Alerts", URL: mtaFeedBase + "camsys%2Fmnr-alerts", Family: FamilyAlert},
	}
}
