package test

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kimm528/ringfitmanager/pointer"
	"github.com/kimm528/ringfitmanager/test"
	"github.com/kimm528/ringfitmanager/users"
)

var genders = []string{"male", "female"}

func RandomUser() users.User {
	return users.User{
		Name:      test.Faker.Person().Name(),
		BirthDate: pointer.FromAny(test.Faker.Time().TimeBetween(time.Date(1930, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)).Format(users.BirthDateLayout)),
		Gender:    pointer.FromAny(test.Faker.RandomStringElement(genders)),
		Room:      pointer.FromAny(test.Faker.Numerify("###")),
		Phone:     pointer.FromAny(test.Faker.Numerify("010-####-####")),
	}
}

// RandomUserWithId returns a user with a generated id, suitable for tests
// that never touch the database.
func RandomUserWithId() *users.User {
	user := RandomUser()
	id := primitive.NewObjectID()
	user.Id = &id
	return &user
}
