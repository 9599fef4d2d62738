package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/transitops/transit-collector/internal/domain"
	"github.com/transitops/transit-collector/internal/observability"
	"github.com/transitops/transit-collector/internal/repository"
)

const (
	outageFeedCurrentURL  = "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fnyct_ene.json"
	outageFeedUpcomingURL = "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fnyct_ene_upcoming.json"
	outageFeedEquipURL    = "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fnyct_ene_equipments.json"

	defaultOutageInterval = 15 * time.Minute
)

// Upstream timestamps arrive as "10/13/2023 10:34:00 PM"; some feeds use a
// 24-hour clock instead.
var outageTimeFormats = []string{
	"01/02/2006 03:04:05 PM",
	"01/02/2006 15:04:05",
}

type outagePayload struct {
	Outages []outageItem `json:"outages"`
}

type outageItem struct {
	Station          string `json:"station"`
	Borough          string `json:"borough"`
	TrainNo          string `json:"trainno"`
	Equipment        string `json:"equipment"`
	EquipmentType    string `json:"equipmenttype"`
	ADA              string `json:"ADA"`
	OutageDate       string `json:"outagedate"`
	EstimatedReturn  string `json:"estimatedreturntoservice"`
	Reason           string `json:"reason"`
	Serving          string `json:"serving"`
	IsUpcomingOutage string `json:"isupcomingoutage"`
	IsMaintenance    string `json:"ismaintenanceoutage"`
}

type equipmentPayload struct {
	Equipments []equipmentItem `json:"equipments"`
}

type equipmentItem struct {
	Equipment     string `json:"equipment"`
	EquipmentType string `json:"equipmenttype"`
	Station       string `json:"station"`
	Borough       string `json:"borough"`
	TrainNo       string `json:"trainno"`
	Latitude      string `json:"latitude"`
	Longitude     string `json:"longitude"`
	ADA           string `json:"ADA"`
	Serving       string `json:"serving"`
	Status        string `json:"status"`
}

// OutageService collects the elevator and escalator JSON feeds: current
// outages, upcoming outages, and the equipment inventory. It runs its own
// slower loop beside the realtime poller.
type OutageService struct {
	fetcher  Fetcher
	outages  repository.OutageRepository
	interval time.Duration
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func NewOutageService(
	fetcher Fetcher,
	outages repository.OutageRepository,
	interval time.Duration,
	logger *zap.Logger,
	metrics *observability.Metrics,
) (*OutageService, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if outages == nil {
		return nil, fmt.Errorf("outage repository is required")
	}
	if interval <= 0 {
		interval = defaultOutageInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OutageService{
		fetcher:  fetcher,
		outages:  outages,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
	}, nil
}

// Start runs an immediate collection, then one per interval until the context
// is canceled.
func (s *OutageService) Start(ctx context.Context) error {
	s.logger.Info("outage collector started", zap.Duration("interval", s.interval))

	s.CollectOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("outage collector stopped")
			return ctx.Err()
		case <-ticker.C:
			s.CollectOnce(ctx)
		}
	}
}

// CollectOnce processes all three feeds. Each feed fails independently; a
// broken outage feed never blocks the equipment inventory.
func (s *OutageService) CollectOnce(ctx context.Context) {
	s.collectOutages(ctx, "elevator_current", outageFeedCurrentURL, domain.OutageFeedCurrent)
	s.collectOutages(ctx, "elevator_upcoming", outageFeedUpcomingURL, domain.OutageFeedUpcoming)
	s.collectEquipment(ctx, "elevator_equipment", outageFeedEquipURL)
}

func (s *OutageService) collectOutages(ctx context.Context, feedName string, endpoint string, feedType domain.OutageFeedType) {
	logger := s.logger.With(zap.String("feed", feedName))

	body, err := s.fetcher.Fetch(ctx, endpoint)
	if err != nil {
		logger.Warn("outage feed fetch failed", zap.Error(err))
		return
	}

	var payload outagePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Warn("outage feed decode failed", zap.Error(err))
		return
	}
	if len(payload.Outages) == 0 {
		logger.Info("no outages in feed")
		return
	}

	rows := make([]domain.EquipmentOutage, 0, len(payload.Outages))
	for _, item := range payload.Outages {
		rows = append(rows, domain.EquipmentOutage{
			FeedType:        feedType,
			Station:         strings.TrimSpace(item.Station),
			Borough:         strings.TrimSpace(item.Borough),
			TrainLines:      strings.TrimSpace(item.TrainNo),
			EquipmentID:     strings.TrimSpace(item.Equipment),
			EquipmentType:   strings.TrimSpace(item.EquipmentType),
			ADA:             adaFlag(item.ADA),
			OutageDate:      parseOutageTime(item.OutageDate),
			EstimatedReturn: parseOutageTime(item.EstimatedReturn),
			Reason:          strings.TrimSpace(item.Reason),
			Serving:         strings.TrimSpace(item.Serving),
			IsUpcoming:      adaFlag(item.IsUpcomingOutage),
			IsMaintenance:   adaFlag(item.IsMaintenance),
		})
	}

	if err := s.outages.WriteOutages(ctx, rows); err != nil {
		logger.Error("failed to persist outages", zap.Error(err))
		return
	}

	s.metrics.AddOutageRows(feedName, len(rows))
	logger.Info("outages persisted", zap.Int("rows", len(rows)))
}

func (s *OutageService) collectEquipment(ctx context.Context, feedName string, endpoint string) {
	logger := s.logger.With(zap.String("feed", feedName))

	body, err := s.fetcher.Fetch(ctx, endpoint)
	if err != nil {
		logger.Warn("equipment feed fetch failed", zap.Error(err))
		return
	}

	var payload equipmentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Warn("equipment feed decode failed", zap.Error(err))
		return
	}
	if len(payload.Equipments) == 0 {
		logger.Info("no equipment items in feed")
		return
	}

	rows := make([]domain.EquipmentUnit, 0, len(payload.Equipments))
	for _, item := range payload.Equipments {
		rows = append(rows, domain.EquipmentUnit{
			EquipmentID:   strings.TrimSpace(item.Equipment),
			EquipmentType: strings.TrimSpace(item.EquipmentType),
			Station:       strings.TrimSpace(item.Station),
			Borough:       strings.TrimSpace(item.Borough),
			TrainLines:    strings.TrimSpace(item.TrainNo),
			Latitude:      parseCoordinate(item.Latitude),
			Longitude:     parseCoordinate(item.Longitude),
			ADA:           adaFlag(item.ADA),
			Serving:       strings.TrimSpace(item.Serving),
			Status:        strings.TrimSpace(item.Status),
		})
	}

	if err := s.outages.WriteEquipment(ctx, rows); err != nil {
		logger.Error("failed to persist equipment", zap.Error(err))
		return
	}

	s.metrics.AddOutageRows(feedName, len(rows))
	logger.Info("equipment persisted", zap.Int("rows", len(rows)))
}

// parseOutageTime tries the known upstream formats in order. Unparseable or
// empty strings store as null rather than failing the row.
func parseOutageTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	for _, format := range outageTimeFormats {
		if t, err := time.Parse(format, value); err == nil {
			return &t
		}
	}
	return nil
}

func parseCoordinate(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

// adaFlag defaults absent flags to "N", matching the upstream convention.
func adaFlag(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "N"
	}
	return value
}
