package network

import (
	"slices"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/maxmuv/dos/sim/msg"
	"github.com/maxmuv/dos/sim/queueing"
	"github.com/maxmuv/dos/sim/timing"
)

var _ = Describe("Timer", func() {
	var (
		layer *Layer
		queue *queueing.DeliveryQueue
	)

	BeforeEach(func() {
		layer = MakeBuilder().WithClock(timing.NewManualClock()).Build()
		queue = queueing.NewDeliveryQueue("Queue")
		Expect(layer.RegisterProcess(0, queue)).To(Succeed())
	})

	AfterEach(func() {
		layer.Close()
	})

	It("should broadcast time messages with an increasing counter", func() {
		t := layer.LaunchTimer(5 * time.Millisecond)

		Eventually(queue.Len).Should(BeNumerically(">=", 3))
		t.Stop()

		Expect(queue.Len()).To(Equal(t.Count()))

		var counters []int32
		for queue.Len() > 0 {
			m, err := queue.DequeueMin()
			Expect(err).NotTo(HaveOccurred())
			Expect(m.From).To(Equal(msg.Broadcast))
			Expect(m.MustString()).To(Equal(msg.TimeText))
			counters = append(counters, m.MustInt())
		}

		slices.Sort(counters)
		for i, c := range counters {
			Expect(c).To(Equal(int32(i)))
		}
	})

	It("should send the first message right away", func() {
		layer.LaunchTimer(time.Hour)

		Eventually(queue.Len).Should(Equal(1))
		Consistently(queue.Len, 50*time.Millisecond).Should(Equal(1))
	})

	It("should be stopped by Close", func() {
		t := layer.LaunchTimer(time.Millisecond)
		Eventually(t.Count).Should(BeNumerically(">", 0))

		layer.Close()
		count := t.Count()

		Consistently(t.Count, 20*time.Millisecond).Should(Equal(count))
		Expect(t.Stop).NotTo(Panic())
	})

	It("should not launch after Close", func() {
		layer.Close()

		Expect(func() { layer.LaunchTimer(time.Second) }).To(Panic())
	})

	It("should reject non-positive periods", func() {
		Expect(func() { layer.LaunchTimer(0) }).To(Panic())
	})
})
