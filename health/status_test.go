package health_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/test"
)

var _ = Describe("Status", func() {
	Describe("Worst", func() {
		It("returns no data for an empty list", func() {
			Expect(health.Worst()).To(Equal(health.StatusNoData))
		})

		It("lets a single danger win", func() {
			Expect(health.Worst(health.StatusNormal, health.StatusDanger, health.StatusWarning)).To(Equal(health.StatusDanger))
		})

		It("returns warning when there is no danger", func() {
			Expect(health.Worst(health.StatusNormal, health.StatusWarning, health.StatusNoData)).To(Equal(health.StatusWarning))
		})

		It("does not let missing readings mask a normal one", func() {
			Expect(health.Worst(health.StatusNoData, health.StatusNormal, health.StatusNoData)).To(Equal(health.StatusNormal))
		})

		It("is independent of the order of the statuses", func() {
			all := []health.Status{health.StatusNoData, health.StatusNormal, health.StatusWarning, health.StatusDanger}
			for i := 0; i < 100; i++ {
				statuses := make([]health.Status, len(health.Metrics))
				for j := range statuses {
					statuses[j] = all[test.Rand.Intn(len(all))]
				}
				expected := health.Worst(statuses...)

				shuffled := append([]health.Status(nil), statuses...)
				test.Rand.Shuffle(len(shuffled), func(a, b int) {
					shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
				})
				Expect(health.Worst(shuffled...)).To(Equal(expected))
			}
		})

		It("is associative", func() {
			a, b, c := health.StatusWarning, health.StatusNormal, health.StatusDanger
			Expect(health.Worst(health.Worst(a, b), c)).To(Equal(health.Worst(a, health.Worst(b, c))))
		})
	})

	Describe("text encoding", func() {
		It("marshals to the status name", func() {
			body, err := json.Marshal(map[string]health.Status{"overall": health.StatusWarning})
			Expect(err).ToNot(HaveOccurred())
			Expect(string(body)).To(Equal(`{"overall":"warning"}`))
		})

		It("round trips through json", func() {
			var decoded map[string]health.Status
			Expect(json.Unmarshal([]byte(`{"overall":"danger"}`), &decoded)).To(Succeed())
			Expect(decoded["overall"]).To(Equal(health.StatusDanger))
		})

		It("rejects unknown names", func() {
			_, err := health.ParseStatus("critical")
			Expect(err).To(HaveOccurred())
		})
	})

	It("only alerts on warning and danger", func() {
		Expect(health.StatusNoData.Alerting()).To(BeFalse())
		Expect(health.StatusNormal.Alerting()).To(BeFalse())
		Expect(health.StatusWarning.Alerting()).To(BeTrue())
		Expect(health.StatusDanger.Alerting()).To(BeTrue())
	})
})
