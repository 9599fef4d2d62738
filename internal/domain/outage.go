package domain

import (
	"fmt"
	"strings"
	"time"
)

// OutageFeedType distinguishes the current and upcoming outage feeds.
type OutageFeedType string

const (
	OutageFeedCurrent  OutageFeedType = "CURRENT"
	OutageFeedUpcoming OutageFeedType = "UPCOMING"
	OutageFeedUnknown  OutageFeedType = "UNKNOWN"
)

func (t OutageFeedType) String() string { return string(t) }

func (t OutageFeedType) IsValid() bool {
	switch t {
	case OutageFeedCurrent, OutageFeedUpcoming, OutageFeedUnknown:
		return true
	}
	return false
}

func ParseOutageFeedTypeFromString(s string) (OutageFeedType, error) {
	ft := OutageFeedType(strings.ToUpper(strings.TrimSpace(s)))
	if !ft.IsValid() {
		return "", fmt.Errorf("%w: invalid outage feed type %q", ErrValidation, s)
	}
	return ft, nil
}

// EquipmentOutage is one elevator/escalator outage row from the JSON feeds.
type EquipmentOutage struct {
	FeedType        OutageFeedType
	Station         string
	Borough         string
	TrainLines      string
	EquipmentID     string
	EquipmentType   string
	ADA             string
	OutageDate      *time.Time
	EstimatedReturn *time.Time
	Reason          string
	Serving         string
	IsUpcoming      string
	IsMaintenance   string
}

// EquipmentUnit is one elevator/escalator inventory row.
type EquipmentUnit struct {
	EquipmentID   string
	EquipmentType string
	Station       string
	Borough       string
	TrainLines    string
	Latitude      *float64
	Longitude     *float64
	ADA           string
	Serving       string
	Status        string
	Notes         string
}
