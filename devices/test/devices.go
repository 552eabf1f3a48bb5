package test

import (
	"fmt"

	"github.com/kimm528/ringfitmanager/devices"
	"github.com/kimm528/ringfitmanager/test"
)

func RandomMac() string {
	mac := "02"
	for i := 0; i < 5; i++ {
		mac += fmt.Sprintf(":%02X", test.Rand.Intn(256))
	}
	return mac
}

func RandomDevice() devices.Device {
	return devices.Device{
		Mac:   RandomMac(),
		Model: test.Faker.RandomStringElement([]string{"R1", "R2", "R2 Pro"}),
		Name:  fmt.Sprintf("Ring %s", test.Faker.Numerify("###")),
	}
}
