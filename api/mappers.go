package api

import (
	"strings"

	"github.com/kimm528/ringfitmanager/auth"
	"github.com/kimm528/ringfitmanager/devices"
	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/monitoring"
	"github.com/kimm528/ringfitmanager/outbox"
	"github.com/kimm528/ringfitmanager/store"
	"github.com/kimm528/ringfitmanager/users"
)

const maxPageSize = 1000

func NewUser(u UserInput) *users.User {
	return &users.User{
		Name:      u.Name,
		BirthDate: emptyToNil(u.BirthDate),
		Gender:    emptyToNil(u.Gender),
		Room:      emptyToNil(u.Room),
		Phone:     emptyToNil(u.Phone),
	}
}

func NewUserDto(u *users.User, profile health.Profile) User {
	return User{
		Id:          u.IdHex(),
		Name:        u.Name,
		BirthDate:   u.BirthDate,
		Gender:      u.Gender,
		Room:        u.Room,
		Phone:       u.Phone,
		Thresholds:  u.Thresholds,
		Goals:       u.Goals,
		Profile:     profile,
		CreatedTime: u.CreatedTime,
		UpdatedTime: u.UpdatedTime,
	}
}

func NewDevice(d DeviceInput) *devices.Device {
	return &devices.Device{
		Mac:   d.Mac,
		Model: strings.TrimSpace(d.Model),
		Name:  strings.TrimSpace(d.Name),
	}
}

func NewDeviceDto(d *devices.Device) Device {
	return Device{
		Id:           d.IdHex(),
		Mac:          d.Mac,
		Model:        d.Model,
		Name:         d.Name,
		UserId:       d.UserId,
		AssignedTime: d.AssignedTime,
		CreatedTime:  d.CreatedTime,
		UpdatedTime:  d.UpdatedTime,
	}
}

func NewDevicesDto(list []*devices.Device) []Device {
	dtos := make([]Device, 0, len(list))
	for _, d := range list {
		dtos = append(dtos, NewDeviceDto(d))
	}
	return dtos
}

func NewSyncResultDto(r *devices.SyncResult) SyncResult {
	return SyncResult{
		Added:   nonNil(r.Added),
		Known:   nonNil(r.Known),
		Missing: nonNil(r.Missing),
	}
}

func NewCardDto(c monitoring.Card) Card {
	dto := Card{
		User:          NewUserDto(c.User, c.Profile),
		Snapshot:      c.Snapshot,
		Evaluation:    c.Evaluation,
		EvaluatedTime: c.EvaluatedTime,
	}
	if c.Device != nil {
		device := NewDeviceDto(c.Device)
		dto.Device = &device
	}
	if c.Error != "" {
		dto.Error = &c.Error
	}
	return dto
}

// NewDashboardDto keeps the order of the cards and counts them by overall
// status. Every status is present in the counts.
func NewDashboardDto(cards []monitoring.Card) Dashboard {
	dto := Dashboard{
		Cards:  make([]Card, 0, len(cards)),
		Counts: map[string]int{},
	}
	for _, s := range []health.Status{health.StatusNoData, health.StatusNormal, health.StatusWarning, health.StatusDanger} {
		dto.Counts[s.String()] = 0
	}
	for _, c := range cards {
		dto.Cards = append(dto.Cards, NewCardDto(c))
		dto.Counts[c.Evaluation.Overall.String()]++
	}
	return dto
}

func NewAlertDto(e outbox.Event) (Alert, error) {
	payload := outbox.HealthAlertPayload{}
	if err := e.DecodePayload(&payload); err != nil {
		return Alert{}, err
	}
	return Alert{
		EventId:     e.EventId,
		CreatedTime: e.CreatedTime,
		UserId:      payload.UserId,
		UserName:    payload.UserName,
		DeviceMac:   payload.DeviceMac,
		Previous:    payload.Previous,
		Current:     payload.Current,
		Statuses:    payload.Statuses,
		MeasuredAt:  payload.MeasuredAt,
	}, nil
}

func NewSessionDto(s *auth.Session) Session {
	return Session{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		Admin: Admin{
			Id:   s.Admin.SubjectId,
			Name: s.Admin.Name,
			Role: s.Admin.Role,
		},
	}
}

func pagination(offset *Offset, limit *Limit) store.Pagination {
	page := store.DefaultPagination()
	if offset != nil {
		page.Offset = *offset
	}
	if limit != nil {
		page.Limit = min(*limit, maxPageSize)
	}
	return page
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
