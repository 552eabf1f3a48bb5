package fitlife_test

import (
	"context"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gstruct"
	"go.uber.org/zap"

	"github.com/kimm528/ringfitmanager/config"
	"github.com/kimm528/ringfitmanager/errors"
	"github.com/kimm528/ringfitmanager/fitlife"
	fitlifeTest "github.com/kimm528/ringfitmanager/fitlife/test"
	"github.com/kimm528/ringfitmanager/health"
)

const mac = "AA:BB:CC:DD:EE:01"

var _ = Describe("Fitlife Client", func() {
	var server *fitlifeTest.FitlifeServer
	var client fitlife.Client

	BeforeEach(func() {
		server = fitlifeTest.ServerStub()
		cfg := &config.Config{
			VendorBaseUrl:      server.URL,
			VendorTokenUrl:     server.URL + fitlifeTest.TokenEndpoint,
			VendorClientId:     fitlifeTest.ClientId,
			VendorClientSecret: fitlifeTest.ClientSecret,
			VendorTimeout:      5 * time.Second,
		}

		var err error
		client, err = fitlife.NewClient(cfg, zap.NewNop().Sugar())
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("Login", func() {
		It("returns the admin for valid credentials", func() {
			result, err := client.Login(context.Background(), fitlifeTest.AdminId, fitlifeTest.AdminPassword)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Token).To(Equal(fitlifeTest.AdminToken))
			Expect(result.Admin).To(Equal(fitlife.Admin{Id: fitlifeTest.AdminId, Name: "Facility Admin", Role: "admin"}))
		})

		It("rejects invalid credentials as unauthorized", func() {
			_, err := client.Login(context.Background(), fitlifeTest.AdminId, "wrong")
			Expect(err).To(MatchError(fitlife.ErrInvalidCredentials))
			Expect(errors.StatusCode(err)).To(Equal(http.StatusUnauthorized))
		})

		It("reports a missing login endpoint as unavailable", func() {
			server.SetStatus("/api/admin/login", http.StatusNotFound)
			_, err := client.Login(context.Background(), fitlifeTest.AdminId, fitlifeTest.AdminPassword)
			Expect(err).To(MatchError(fitlife.ErrUnavailable))
			Expect(err).ToNot(MatchError(fitlife.ErrDeviceNotFound))
			Expect(errors.StatusCode(err)).To(Equal(http.StatusBadGateway))
		})
	})

	Describe("ListDevices", func() {
		It("decodes the registered devices", func() {
			server.SetResponse("/api/devices", `{"devices":[{"mac":"AA:BB:CC:DD:EE:01","model":"R1","name":"Ring 1"},{"mac":"AA:BB:CC:DD:EE:02","model":"R1","name":"Ring 2"}]}`)
			devices, err := client.ListDevices(context.Background())
			Expect(err).ToNot(HaveOccurred())
			Expect(devices).To(ConsistOf(
				fitlife.Device{Mac: "AA:BB:CC:DD:EE:01", Model: "R1", Name: "Ring 1"},
				fitlife.Device{Mac: "AA:BB:CC:DD:EE:02", Model: "R1", Name: "Ring 2"},
			))
		})

		It("attaches the client credentials token", func() {
			server.SetResponse("/api/devices", `{"devices":[]}`)
			_, err := client.ListDevices(context.Background())
			Expect(err).ToNot(HaveOccurred())
			last := server.Requests[len(server.Requests)-1]
			Expect(last.Header.Get("Authorization")).To(Equal("Bearer " + fitlifeTest.AccessToken))
		})

		It("reports vendor failures as bad gateway", func() {
			server.SetStatus("/api/devices", http.StatusServiceUnavailable)
			_, err := client.ListDevices(context.Background())
			Expect(err).To(MatchError(fitlife.ErrUnavailable))
			Expect(errors.StatusCode(err)).To(Equal(http.StatusBadGateway))
		})

		It("reports a missing device list as unavailable", func() {
			server.SetStatus("/api/devices", http.StatusNotFound)
			_, err := client.ListDevices(context.Background())
			Expect(err).To(MatchError(fitlife.ErrUnavailable))
			Expect(err).ToNot(MatchError(fitlife.ErrDeviceNotFound))
		})
	})

	Describe("GetLatest", func() {
		It("decodes readings sent as numbers or strings", func() {
			server.SetResponse("/api/devices/"+mac+"/latest", `{
				"bpm": "72", "oxygen": 97, "stress": 35, "temperature": "36.6",
				"systolic": 120, "diastolic": 80,
				"steps": 5000, "calories": "1000", "distance": 2.5,
				"measuredAt": "2024-05-01T09:30:00Z"
			}`)
			m, err := client.GetLatest(context.Background(), mac)
			Expect(err).ToNot(HaveOccurred())
			Expect(m.HeartRate).To(PointTo(Equal(72.0)))
			Expect(m.Oxygen).To(PointTo(Equal(97.0)))
			Expect(m.Temperature).To(PointTo(Equal(36.6)))
			Expect(m.BloodPressure).To(PointTo(Equal(health.BloodPressure{Systolic: 120, Diastolic: 80})))
			Expect(m.Activity).To(Equal(health.Activity{Steps: 5000, Calories: 1000, Distance: 2.5}))
			Expect(m.MeasuredAt).To(PointTo(BeTemporally("==", time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC))))
		})

		It("treats zero readings as missing", func() {
			server.SetResponse("/api/devices/"+mac+"/latest", `{"bpm": 0, "oxygen": 0, "stress": 0, "temperature": 0, "systolic": 120, "diastolic": 0, "measuredAt": ""}`)
			m, err := client.GetLatest(context.Background(), mac)
			Expect(err).ToNot(HaveOccurred())
			Expect(m.HeartRate).To(BeNil())
			Expect(m.Oxygen).To(BeNil())
			Expect(m.Stress).To(BeNil())
			Expect(m.Temperature).To(BeNil())
			Expect(m.BloodPressure).To(BeNil())
			Expect(m.MeasuredAt).To(BeNil())

			evaluation := health.Evaluate(m.Snapshot(nil), health.DefaultProfile())
			Expect(evaluation.Overall).To(Equal(health.StatusNoData))
		})

		It("returns device not found for unknown devices", func() {
			_, err := client.GetLatest(context.Background(), "00:00:00:00:00:00")
			Expect(err).To(MatchError(fitlife.ErrDeviceNotFound))
			Expect(errors.StatusCode(err)).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GetSleep", func() {
		It("maps sleep types to stages", func() {
			server.SetResponse("/api/devices/"+mac+"/sleep", `{"sessions":[
				{"startTime":"2024-05-01T23:00:00Z","endTime":"2024-05-02T01:00:00Z","sleepType":1},
				{"startTime":"2024-05-02T01:00:00Z","endTime":"2024-05-02T04:00:00Z","sleepType":"2"},
				{"startTime":"2024-05-02T04:00:00Z","endTime":"2024-05-02T05:00:00Z","sleepType":3},
				{"startTime":"2024-05-02T05:00:00Z","endTime":"2024-05-02T05:30:00Z","sleepType":4},
				{"startTime":"2024-05-02T05:30:00Z","endTime":"2024-05-02T06:00:00Z","sleepType":9}
			]}`)
			sessions, err := client.GetSleep(context.Background(), mac, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))
			Expect(err).ToNot(HaveOccurred())
			Expect(sessions).To(HaveLen(5))

			last := server.Requests[len(server.Requests)-1]
			Expect(last.URL.Query().Get("date")).To(Equal("2024-05-02"))

			breakdown := health.BreakdownFromSessions(sessions)
			Expect(breakdown).To(Equal(health.SleepBreakdown{Total: 390, Deep: 120, Light: 180, REM: 60, Awake: 30}))
		})
	})

	Describe("GetHistory", func() {
		It("returns the records in the period", func() {
			server.SetResponse("/api/devices/"+mac+"/history", `{"records":[
				{"bpm":70,"oxygen":98,"measuredAt":"2024-05-01T08:00:00Z"},
				{"bpm":112,"oxygen":0,"measuredAt":"2024-05-01T09:00:00Z"}
			]}`)
			from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
			records, err := client.GetHistory(context.Background(), mac, from, from.Add(24*time.Hour))
			Expect(err).ToNot(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[1].HeartRate).To(PointTo(Equal(112.0)))
			Expect(records[1].Oxygen).To(BeNil())

			last := server.Requests[len(server.Requests)-1]
			Expect(last.URL.Query().Get("from")).To(Equal("2024-05-01T00:00:00Z"))
		})
	})
})
