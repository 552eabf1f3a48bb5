package api

import (
	"time"

	"github.com/kimm528/ringfitmanager/health"
)

const (
	ContentTypeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeHtml = "text/html; charset=utf-8"
)

type Offset = int
type Limit = int
type UserId = string
type DeviceId = string

type ReportFormat string

const (
	ReportFormatXlsx ReportFormat = "xlsx"
	ReportFormatHtml ReportFormat = "html"
)

type LoginRequest struct {
	Id       string `json:"id"`
	Password string `json:"password"`
}

type Admin struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Admin     Admin     `json:"admin"`
}

type UserInput struct {
	Name      string  `json:"name"`
	BirthDate *string `json:"birthDate,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	Room      *string `json:"room,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

type User struct {
	Id          string             `json:"id"`
	Name        string             `json:"name"`
	BirthDate   *string            `json:"birthDate,omitempty"`
	Gender      *string            `json:"gender,omitempty"`
	Room        *string            `json:"room,omitempty"`
	Phone       *string            `json:"phone,omitempty"`
	Thresholds  *health.Thresholds `json:"thresholds,omitempty"`
	Goals       *health.Goals      `json:"goals,omitempty"`
	Profile     health.Profile     `json:"profile"`
	CreatedTime time.Time          `json:"createdTime"`
	UpdatedTime time.Time          `json:"updatedTime"`
}

type Users struct {
	Users      []User `json:"users"`
	TotalCount int    `json:"totalCount"`
}

type DeviceInput struct {
	Mac   string `json:"mac"`
	Model string `json:"model,omitempty"`
	Name  string `json:"name,omitempty"`
}

type Device struct {
	Id           string     `json:"id"`
	Mac          string     `json:"mac"`
	Model        string     `json:"model,omitempty"`
	Name         string     `json:"name,omitempty"`
	UserId       *string    `json:"userId,omitempty"`
	AssignedTime *time.Time `json:"assignedTime,omitempty"`
	CreatedTime  time.Time  `json:"createdTime"`
	UpdatedTime  time.Time  `json:"updatedTime"`
}

type Devices struct {
	Devices    []Device `json:"devices"`
	TotalCount int      `json:"totalCount"`
}

type Assignment struct {
	UserId string `json:"userId"`
}

type SyncResult struct {
	Added   []string `json:"added"`
	Known   []string `json:"known"`
	Missing []string `json:"missing"`
}

type Card struct {
	User          User              `json:"user"`
	Device        *Device           `json:"device,omitempty"`
	Snapshot      health.Snapshot   `json:"snapshot"`
	Evaluation    health.Evaluation `json:"evaluation"`
	EvaluatedTime time.Time         `json:"evaluatedTime"`
	Error         *string           `json:"error,omitempty"`
}

type Dashboard struct {
	Cards  []Card         `json:"cards"`
	Counts map[string]int `json:"counts"`
}

type Alert struct {
	EventId     string            `json:"eventId"`
	CreatedTime time.Time         `json:"createdTime"`
	UserId      string            `json:"userId"`
	UserName    string            `json:"userName"`
	DeviceMac   string            `json:"deviceMac"`
	Previous    string            `json:"previous"`
	Current     string            `json:"current"`
	Statuses    map[string]string `json:"statuses"`
	MeasuredAt  *time.Time        `json:"measuredAt,omitempty"`
}

type ListUsersParams struct {
	Search *string `form:"search,omitempty" json:"search,omitempty"`
	Room   *string `form:"room,omitempty" json:"room,omitempty"`
	Offset *Offset `form:"offset,omitempty" json:"offset,omitempty"`
	Limit  *Limit  `form:"limit,omitempty" json:"limit,omitempty"`
}

type ListDevicesParams struct {
	Assigned *bool   `form:"assigned,omitempty" json:"assigned,omitempty"`
	Offset   *Offset `form:"offset,omitempty" json:"offset,omitempty"`
	Limit    *Limit  `form:"limit,omitempty" json:"limit,omitempty"`
}

type GetUserEvaluationParams struct {
	Refresh *bool `form:"refresh,omitempty" json:"refresh,omitempty"`
}

type GetUserReportParams struct {
	From   *time.Time    `form:"from,omitempty" json:"from,omitempty"`
	To     *time.Time    `form:"to,omitempty" json:"to,omitempty"`
	Format *ReportFormat `form:"format,omitempty" json:"format,omitempty"`
}

type GetDashboardParams struct {
	MinStatus *string `form:"minStatus,omitempty" json:"minStatus,omitempty"`
	Search    *string `form:"search,omitempty" json:"search,omitempty"`
	Room      *string `form:"room,omitempty" json:"room,omitempty"`
}

type ListAlertsParams struct {
	Limit *Limit `form:"limit,omitempty" json:"limit,omitempty"`
}
