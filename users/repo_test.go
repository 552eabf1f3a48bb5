package users_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gstruct"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/kimm528/ringfitmanager/errors"
	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/pointer"
	"github.com/kimm528/ringfitmanager/store"
	dbTest "github.com/kimm528/ringfitmanager/store/test"
	"github.com/kimm528/ringfitmanager/users"
	usersTest "github.com/kimm528/ringfitmanager/users/test"
)

var _ = Describe("Users Repository", func() {
	var repo users.Repository
	var collection *mongo.Collection

	BeforeEach(func() {
		var err error
		database := dbTest.GetTestDatabase()
		collection = database.Collection(users.CollectionName)
		lifecycle := fxtest.NewLifecycle(GinkgoT())
		repo, err = users.NewRepository(database, zap.NewNop().Sugar(), lifecycle)
		Expect(err).ToNot(HaveOccurred())
		lifecycle.RequireStart()
	})

	AfterEach(func() {
		_, err := collection.DeleteMany(context.Background(), bson.M{})
		Expect(err).ToNot(HaveOccurred())
	})

	Describe("Create", func() {
		It("assigns an id and timestamps", func() {
			user := usersTest.RandomUser()
			created, err := repo.Create(context.Background(), &user)
			Expect(err).ToNot(HaveOccurred())
			Expect(created.Id).ToNot(BeNil())
			Expect(created.Name).To(Equal(user.Name))
			Expect(created.Room).To(Equal(user.Room))
			Expect(created.CreatedTime).ToNot(BeZero())
			Expect(created.UpdatedTime).ToNot(BeZero())
		})
	})

	Describe("Get", func() {
		It("returns not found for an unknown id", func() {
			_, err := repo.Get(context.Background(), primitive.NewObjectID().Hex())
			Expect(err).To(MatchError(users.ErrNotFound))
			Expect(errors.StatusCode(err)).To(Equal(404))
		})

		It("returns not found for a malformed id", func() {
			_, err := repo.Get(context.Background(), "not-an-id")
			Expect(err).To(MatchError(users.ErrNotFound))
		})
	})

	Context("with existing users", func() {
		var created []*users.User

		BeforeEach(func() {
			created = nil
			for _, name := range []string{"Kim Minsu", "Lee Jiyoung", "Kim Hana"} {
				user := usersTest.RandomUser()
				user.Name = name
				user.Room = pointer.FromAny("101")
				result, err := repo.Create(context.Background(), &user)
				Expect(err).ToNot(HaveOccurred())
				created = append(created, result)
			}
		})

		It("lists users ordered by name with a total count", func() {
			result, err := repo.List(context.Background(), &users.Filter{}, store.DefaultPagination().WithLimit(2))
			Expect(err).ToNot(HaveOccurred())
			Expect(result.TotalCount).To(Equal(3))
			Expect(result.Users).To(HaveLen(2))
			Expect(result.Users[0].Name).To(Equal("Kim Hana"))
			Expect(result.Users[1].Name).To(Equal("Kim Minsu"))
		})

		It("searches names case-insensitively", func() {
			result, err := repo.List(context.Background(), &users.Filter{Search: pointer.FromAny("kim")}, store.DefaultPagination())
			Expect(err).ToNot(HaveOccurred())
			Expect(result.TotalCount).To(Equal(2))
		})

		It("filters by ids", func() {
			result, err := repo.List(context.Background(), &users.Filter{Ids: []string{created[1].IdHex()}}, store.DefaultPagination())
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Users).To(HaveLen(1))
			Expect(result.Users[0].Name).To(Equal("Lee Jiyoung"))
		})

		It("updates details and unsets missing optional fields", func() {
			update := &users.User{Name: "Lee Jiyoung", Room: pointer.FromAny("202")}
			updated, err := repo.Update(context.Background(), created[1].IdHex(), update)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Room).To(PointTo(Equal("202")))
			Expect(updated.Phone).To(BeNil())
			Expect(updated.BirthDate).To(BeNil())
			Expect(updated.UpdatedTime).To(BeTemporally(">=", created[1].UpdatedTime))
		})

		It("sets and clears thresholds", func() {
			thresholds := health.DefaultThresholds()
			thresholds.HeartRate.DangerHigh = 130

			updated, err := repo.SetThresholds(context.Background(), created[0].IdHex(), &thresholds)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Thresholds).To(PointTo(Equal(thresholds)))

			updated, err = repo.SetThresholds(context.Background(), created[0].IdHex(), nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Thresholds).To(BeNil())
		})

		It("sets goals", func() {
			goals := health.Goals{Steps: 4000, Calories: 1500, Distance: 2}
			updated, err := repo.SetGoals(context.Background(), created[0].IdHex(), &goals)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Goals).To(PointTo(Equal(goals)))
		})

		It("deletes a user", func() {
			Expect(repo.Delete(context.Background(), created[2].IdHex())).To(Succeed())
			_, err := repo.Get(context.Background(), created[2].IdHex())
			Expect(err).To(MatchError(users.ErrNotFound))
			Expect(repo.Delete(context.Background(), created[2].IdHex())).To(MatchError(users.ErrNotFound))
		})
	})
})
