package test

import (
	"context"
	"fmt"
	"time"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kimm528/ringfitmanager/store"
	"github.com/kimm528/ringfitmanager/test"
)

const (
	mongoTestHost = "mongodb://127.0.0.1:27017"
	mongoTimeout  = time.Second * 5
)

var (
	database *mongo.Database
)

func SetupDatabase() {
	client, err := store.NewClient(mongoTestHost)
	Expect(err).ToNot(HaveOccurred())

	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	err = client.Ping(ctx, nil)
	Expect(err).ToNot(HaveOccurred())

	databaseName := fmt.Sprintf("ringfit_test_%s_%d", test.Faker.Lorem().Word(), ginkgo.GinkgoParallelProcess())
	database = client.Database(databaseName)
}

func TeardownDatabase() {
	Expect(database).ToNot(BeNil())
	err := database.Drop(context.Background())
	Expect(err).ToNot(HaveOccurred())

	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	Expect(database.Client().Disconnect(ctx)).ToNot(HaveOccurred())
	database = nil
}

func GetTestDatabase() *mongo.Database {
	Expect(database).ToNot(BeNil())
	return database
}
