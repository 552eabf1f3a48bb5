package monitoring_test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/kimm528/ringfitmanager/config"
	"github.com/kimm528/ringfitmanager/devices"
	devicesTest "github.com/kimm528/ringfitmanager/devices/test"
	"github.com/kimm528/ringfitmanager/fitlife"
	fitlifeTest "github.com/kimm528/ringfitmanager/fitlife/test"
	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/monitoring"
	"github.com/kimm528/ringfitmanager/outbox"
	"github.com/kimm528/ringfitmanager/pointer"
	dbTest "github.com/kimm528/ringfitmanager/store/test"
	"github.com/kimm528/ringfitmanager/users"
	usersTest "github.com/kimm528/ringfitmanager/users/test"
)

// failingOutbox fails the next failures writes before delegating.
type failingOutbox struct {
	outbox.Repository
	failures int
}

func (f *failingOutbox) Create(ctx context.Context, event outbox.Event) error {
	if f.failures > 0 {
		f.failures--
		return fmt.Errorf("mongo down")
	}
	return f.Repository.Create(ctx, event)
}

var _ = Describe("Monitoring Service", func() {
	var app *fxtest.App
	var flaky *failingOutbox
	var service monitoring.Service
	var refresher *monitoring.Refresher
	var usersService users.Service
	var devicesService devices.Service
	var alerts outbox.Repository
	var vendor *fitlifeTest.MockClient

	BeforeEach(func() {
		vendor = fitlifeTest.NewMockClient(gomock.NewController(GinkgoT()))
		database := dbTest.GetTestDatabase()
		cfg := &config.Config{
			SnapshotCacheSize: 100,
			SnapshotCacheTTL:  time.Minute,
		}

		app = fxtest.New(GinkgoT(),
			fx.Supply(database, database.Client(), zap.NewNop().Sugar(), health.DefaultProfile(), cfg),
			fx.Provide(
				func() fitlife.Client { return vendor },
				outbox.NewRepository,
			),
			fx.Decorate(func(repo outbox.Repository) outbox.Repository {
				flaky = &failingOutbox{Repository: repo}
				return flaky
			}),
			users.Module,
			devices.Module,
			monitoring.Module,
			fx.Populate(&service, &refresher, &usersService, &devicesService, &alerts),
		)
		app.RequireStart()
	})

	AfterEach(func() {
		app.RequireStop()
		database := dbTest.GetTestDatabase()
		for _, collection := range []string{users.CollectionName, devices.CollectionName, outbox.CollectionName} {
			_, err := database.Collection(collection).DeleteMany(context.Background(), bson.M{})
			Expect(err).ToNot(HaveOccurred())
		}
	})

	createUser := func(name string) *users.User {
		user := usersTest.RandomUser()
		user.Name = name
		created, err := usersService.Create(context.Background(), &user)
		Expect(err).ToNot(HaveOccurred())
		return created
	}

	wear := func(user *users.User) *devices.Device {
		device := devicesTest.RandomDevice()
		created, err := devicesService.Create(context.Background(), &device)
		Expect(err).ToNot(HaveOccurred())
		assigned, err := devicesService.Assign(context.Background(), created.IdHex(), user.IdHex())
		Expect(err).ToNot(HaveOccurred())
		return assigned
	}

	reports := func(mac string, m fitlife.Measurement) *gomock.Call {
		vendor.EXPECT().GetSleep(gomock.Any(), mac, gomock.Any()).Return(nil, nil).AnyTimes()
		return vendor.EXPECT().GetLatest(gomock.Any(), mac).Return(&m, nil)
	}

	Describe("Evaluate", func() {
		It("reports no data for a user without a device", func() {
			user := createUser("Kim Minsu")
			card, err := service.Evaluate(context.Background(), user.IdHex())
			Expect(err).ToNot(HaveOccurred())
			Expect(card.Device).To(BeNil())
			Expect(card.Evaluation.Overall).To(Equal(health.StatusNoData))
			for _, metric := range health.Metrics {
				Expect(card.Evaluation.Statuses).To(HaveKeyWithValue(metric, health.StatusNoData))
			}
		})

		It("classifies the latest readings against the user's profile", func() {
			user := createUser("Kim Minsu")
			device := wear(user)
			reports(device.Mac, fitlife.Measurement{
				HeartRate: pointer.FromAny(45.0),
				Oxygen:    pointer.FromAny(98.0),
				Activity:  health.Activity{Steps: 5000, Calories: 1000, Distance: 2.5},
			})

			card, err := service.Evaluate(context.Background(), user.IdHex())
			Expect(err).ToNot(HaveOccurred())
			Expect(card.Evaluation.Statuses).To(HaveKeyWithValue(health.MetricHeartRate, health.StatusDanger))
			Expect(card.Evaluation.Statuses).To(HaveKeyWithValue(health.MetricOxygen, health.StatusNormal))
			Expect(card.Evaluation.Overall).To(Equal(health.StatusDanger))
			Expect(card.Evaluation.Achievement).To(BeNumerically("~", 50, 0.001))
		})

		It("applies threshold overrides", func() {
			user := createUser("Kim Minsu")
			_, err := usersService.UpdateThresholds(context.Background(), user.IdHex(), []byte(`{"heartRate":{"dangerLow":40,"warningLow":44}}`))
			Expect(err).ToNot(HaveOccurred())
			device := wear(user)
			reports(device.Mac, fitlife.Measurement{HeartRate: pointer.FromAny(45.0)})

			card, err := service.Evaluate(context.Background(), user.IdHex())
			Expect(err).ToNot(HaveOccurred())
			Expect(card.Evaluation.Statuses).To(HaveKeyWithValue(health.MetricHeartRate, health.StatusNormal))
		})

		It("scores last night's sleep", func() {
			user := createUser("Kim Minsu")
			device := wear(user)
			start := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)
			vendor.EXPECT().GetLatest(gomock.Any(), device.Mac).Return(&fitlife.Measurement{}, nil)
			vendor.EXPECT().GetSleep(gomock.Any(), device.Mac, gomock.Any()).Return([]health.SleepSession{
				{Start: start, End: start.Add(90 * time.Minute), Stage: health.SleepStageDeep},
				{Start: start.Add(90 * time.Minute), End: start.Add(7 * time.Hour), Stage: health.SleepStageLight},
			}, nil)

			card, err := service.Evaluate(context.Background(), user.IdHex())
			Expect(err).ToNot(HaveOccurred())
			Expect(card.Snapshot.Sleep).ToNot(BeNil())
			Expect(card.Evaluation.SleepScore).ToNot(BeNil())
			Expect(card.Evaluation.Statuses).ToNot(HaveKeyWithValue(health.MetricSleepScore, health.StatusNoData))
		})

		It("serves repeated evaluations from the cache", func() {
			user := createUser("Kim Minsu")
			device := wear(user)
			reports(device.Mac, fitlife.Measurement{HeartRate: pointer.FromAny(72.0)}).Times(1)

			for i := 0; i < 3; i++ {
				card, err := service.Evaluate(context.Background(), user.IdHex())
				Expect(err).ToNot(HaveOccurred())
				Expect(card.Evaluation.Statuses).To(HaveKeyWithValue(health.MetricHeartRate, health.StatusNormal))
			}
		})

		It("reports no data when the vendor does not know the device", func() {
			user := createUser("Kim Minsu")
			device := wear(user)
			vendor.EXPECT().GetLatest(gomock.Any(), device.Mac).Return(nil, fitlife.ErrDeviceNotFound)

			card, err := service.Evaluate(context.Background(), user.IdHex())
			Expect(err).ToNot(HaveOccurred())
			Expect(card.Evaluation.Overall).To(Equal(health.StatusNoData))
		})

		It("fails for an unknown user", func() {
			_, err := service.Evaluate(context.Background(), "000000000000000000000000")
			Expect(err).To(MatchError(users.ErrNotFound))
		})
	})

	Describe("Refresh", func() {
		It("bypasses the cache and records an alert when the status worsens", func() {
			user := createUser("Kim Minsu")
			device := wear(user)
			vendor.EXPECT().GetSleep(gomock.Any(), device.Mac, gomock.Any()).Return(nil, nil).AnyTimes()
			gomock.InOrder(
				vendor.EXPECT().GetLatest(gomock.Any(), device.Mac).Return(&fitlife.Measurement{HeartRate: pointer.FromAny(72.0)}, nil),
				vendor.EXPECT().GetLatest(gomock.Any(), device.Mac).Return(&fitlife.Measurement{HeartRate: pointer.FromAny(105.0)}, nil),
				vendor.EXPECT().GetLatest(gomock.Any(), device.Mac).Return(&fitlife.Measurement{HeartRate: pointer.FromAny(106.0)}, nil),
				vendor.EXPECT().GetLatest(gomock.Any(), device.Mac).Return(&fitlife.Measurement{HeartRate: pointer.FromAny(120.0)}, nil),
			)

			card, err := service.Refresh(context.Background(), user.IdHex())
			Expect(err).ToNot(HaveOccurred())
			Expect(card.Evaluation.Overall).To(Equal(health.StatusNormal))

			card, err = service.Refresh(context.Background(), user.IdHex())
			Expect(err).ToNot(HaveOccurred())
			Expect(card.Evaluation.Overall).To(Equal(health.StatusWarning))

			_, err = service.Refresh(context.Background(), user.IdHex())
			Expect(err).ToNot(HaveOccurred())

			card, err = service.Refresh(context.Background(), user.IdHex())
			Expect(err).ToNot(HaveOccurred())
			Expect(card.Evaluation.Overall).To(Equal(health.StatusDanger))

			events, err := alerts.List(context.Background(), outbox.EventTypeHealthAlert, 10)
			Expect(err).ToNot(HaveOccurred())
			Expect(events).To(HaveLen(2))

			var latest outbox.HealthAlertPayload
			Expect(events[0].DecodePayload(&latest)).To(Succeed())
			Expect(latest.UserId).To(Equal(user.IdHex()))
			Expect(latest.DeviceMac).To(Equal(device.Mac))
			Expect(latest.Previous).To(Equal("warning"))
			Expect(latest.Current).To(Equal("danger"))
			Expect(latest.Statuses).To(HaveKeyWithValue("heartRate", "danger"))
		})

		It("records the alert on the next refresh when storing it failed", func() {
			user := createUser("Kim Minsu")
			device := wear(user)
			vendor.EXPECT().GetSleep(gomock.Any(), device.Mac, gomock.Any()).Return(nil, nil).AnyTimes()
			vendor.EXPECT().GetLatest(gomock.Any(), device.Mac).Return(&fitlife.Measurement{HeartRate: pointer.FromAny(45.0)}, nil).Times(2)

			flaky.failures = 1
			_, err := service.Refresh(context.Background(), user.IdHex())
			Expect(err).To(MatchError(ContainSubstring("unable to record health alert")))

			card, err := service.Refresh(context.Background(), user.IdHex())
			Expect(err).ToNot(HaveOccurred())
			Expect(card.Evaluation.Overall).To(Equal(health.StatusDanger))

			events, err := alerts.List(context.Background(), outbox.EventTypeHealthAlert, 10)
			Expect(err).ToNot(HaveOccurred())
			Expect(events).To(HaveLen(1))

			var payload outbox.HealthAlertPayload
			Expect(events[0].DecodePayload(&payload)).To(Succeed())
			Expect(payload.Previous).To(Equal("nodata"))
			Expect(payload.Current).To(Equal("danger"))
		})
	})

	Describe("Dashboard", func() {
		It("orders cards worst first, then by name", func() {
			calm := createUser("Ahn Minji")
			alarming := createUser("Yoon Seok")
			watched := createUser("Baek Hyun")
			idle := createUser("Cho Eun")

			reports(wear(calm).Mac, fitlife.Measurement{HeartRate: pointer.FromAny(70.0)})
			reports(wear(alarming).Mac, fitlife.Measurement{Oxygen: pointer.FromAny(85.0)})
			reports(wear(watched).Mac, fitlife.Measurement{Temperature: pointer.FromAny(37.8)})

			cards, err := service.Dashboard(context.Background(), monitoring.DashboardFilter{})
			Expect(err).ToNot(HaveOccurred())
			Expect(cards).To(HaveLen(4))

			names := make([]string, len(cards))
			for i, c := range cards {
				names[i] = c.User.Name
			}
			Expect(names).To(Equal([]string{alarming.Name, watched.Name, calm.Name, idle.Name}))
			Expect(cards[3].Evaluation.Overall).To(Equal(health.StatusNoData))
		})

		It("filters by minimum status", func() {
			calm := createUser("Ahn Minji")
			alarming := createUser("Yoon Seok")
			reports(wear(calm).Mac, fitlife.Measurement{HeartRate: pointer.FromAny(70.0)})
			reports(wear(alarming).Mac, fitlife.Measurement{HeartRate: pointer.FromAny(115.0)})

			cards, err := service.Dashboard(context.Background(), monitoring.DashboardFilter{MinStatus: pointer.FromAny(health.StatusWarning)})
			Expect(err).ToNot(HaveOccurred())
			Expect(cards).To(HaveLen(1))
			Expect(cards[0].User.Name).To(Equal(alarming.Name))
		})

		It("keeps a card when the vendor fails for one user", func() {
			user := createUser("Ahn Minji")
			device := wear(user)
			vendor.EXPECT().GetLatest(gomock.Any(), device.Mac).Return(nil, fitlife.ErrUnavailable)

			cards, err := service.Dashboard(context.Background(), monitoring.DashboardFilter{})
			Expect(err).ToNot(HaveOccurred())
			Expect(cards).To(HaveLen(1))
			Expect(cards[0].Error).ToNot(BeEmpty())
			Expect(cards[0].Evaluation.Overall).To(Equal(health.StatusNoData))
		})
	})

	Describe("Refresher", func() {
		It("refreshes every user wearing a device", func() {
			first := createUser("Ahn Minji")
			second := createUser("Yoon Seok")
			createUser("Cho Eun")
			reports(wear(first).Mac, fitlife.Measurement{HeartRate: pointer.FromAny(70.0)})
			reports(wear(second).Mac, fitlife.Measurement{HeartRate: pointer.FromAny(130.0)})

			Expect(refresher.RefreshAll(context.Background())).To(Equal(2))

			events, err := alerts.List(context.Background(), outbox.EventTypeHealthAlert, 10)
			Expect(err).ToNot(HaveOccurred())
			Expect(events).To(HaveLen(1))
		})

		It("retries a failed user after the others", func() {
			unstable := createUser("Ahn Minji")
			steady := createUser("Yoon Seok")
			unstableMac := wear(unstable).Mac
			reports(wear(steady).Mac, fitlife.Measurement{HeartRate: pointer.FromAny(70.0)})

			vendor.EXPECT().GetSleep(gomock.Any(), unstableMac, gomock.Any()).Return(nil, nil).AnyTimes()
			gomock.InOrder(
				vendor.EXPECT().GetLatest(gomock.Any(), unstableMac).Return(nil, fitlife.ErrUnavailable),
				vendor.EXPECT().GetLatest(gomock.Any(), unstableMac).Return(&fitlife.Measurement{HeartRate: pointer.FromAny(72.0)}, nil),
			)

			Expect(refresher.RefreshAll(context.Background())).To(Equal(2))
		})

		It("gives up on a user after the last attempt", func() {
			user := createUser("Ahn Minji")
			mac := wear(user).Mac
			vendor.EXPECT().GetLatest(gomock.Any(), mac).Return(nil, fitlife.ErrUnavailable).Times(2)

			Expect(refresher.RefreshAll(context.Background())).To(Equal(0))
		})
	})
})
