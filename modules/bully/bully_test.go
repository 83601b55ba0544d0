package bully

import (
	"fmt"
	"io"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/maxmuv/dos/sim/msg"
	"github.com/maxmuv/dos/sim/process"
	"github.com/maxmuv/dos/sim/timing"
)

type textMatcher string

func (t textMatcher) Matches(x any) bool {
	m, ok := x.(*msg.Message)
	return ok && m.Text() == string(t)
}

func (t textMatcher) String() string {
	return fmt.Sprintf("is a %s message", string(t))
}

func from(src int, text string) *msg.Message {
	return msg.MsgBuilder{}.
		WithSrc(src).
		WithArgs(msg.String(text)).
		Build()
}

func tick(n int32) *msg.Message {
	return msg.MsgBuilder{}.
		WithSrc(msg.Broadcast).
		WithArgs(msg.String(msg.TimeText), msg.Int(n)).
		Build()
}

var _ = Describe("Bully", func() {
	var (
		mockCtrl *gomock.Controller
		network  *MockNetwork
		p        *process.Process
		b        *Bully
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		network = NewMockNetwork(mockCtrl)
		network.EXPECT().RegisterProcess(2, gomock.Any()).Return(nil)

		var err error
		p, err = process.MakeBuilder().
			WithNetwork(network).
			WithClock(timing.NewManualClock()).
			WithLogger(log.New(io.Discard, "", 0)).
			Build(2)
		Expect(err).NotTo(HaveOccurred())

		b = New()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should start without a coordinator", func() {
		Expect(b.Coordinator()).To(Equal(NoCoordinator))
		Expect(b.Electing()).To(BeFalse())
	})

	It("should leave other messages alone", func() {
		Expect(b.Handle(p, from(0, "TEST_HELLO"))).To(BeFalse())
		Expect(b.Handle(p, msg.New(msg.Int(3)))).To(BeFalse())
	})

	It("should forward elections to higher nodes and answer alive", func() {
		network.EXPECT().Neighbors(2).Return([]int{0, 1, 3, 4})
		network.EXPECT().Send(2, 3, textMatcher(Election))
		network.EXPECT().Send(2, 4, textMatcher(Election))
		network.EXPECT().Send(2, 1, textMatcher(Alive))

		Expect(b.Handle(p, from(1, Election))).To(BeTrue())
		Expect(b.Electing()).To(BeTrue())
	})

	It("should not answer alive to an injected election", func() {
		network.EXPECT().Neighbors(2).Return([]int{3})
		network.EXPECT().Send(2, 3, textMatcher(Election))

		Expect(b.Handle(p, from(msg.Broadcast, Election))).To(BeTrue())
	})

	It("should win without higher neighbors", func() {
		network.EXPECT().Neighbors(2).Return([]int{0, 1})
		network.EXPECT().Send(2, 0, textMatcher(Victory))
		network.EXPECT().Send(2, 1, textMatcher(Victory))

		Expect(b.Handle(p, from(1, Election))).To(BeTrue())
		Expect(b.Coordinator()).To(Equal(2))
		Expect(b.Electing()).To(BeFalse())
	})

	It("should accept a victory from a higher node", func() {
		Expect(b.Handle(p, from(5, Victory))).To(BeTrue())
		Expect(b.Coordinator()).To(Equal(5))
	})

	It("should bully a victory from a lower node", func() {
		network.EXPECT().Neighbors(2).Return([]int{1})
		network.EXPECT().Send(2, 1, textMatcher(Victory))

		Expect(b.Handle(p, from(1, Victory))).To(BeTrue())
		Expect(b.Coordinator()).To(Equal(2))
	})

	It("should observe timer messages without claiming them", func() {
		Expect(b.Handle(p, tick(0))).To(BeFalse())
	})

	Context("when an election goes unanswered", func() {
		BeforeEach(func() {
			network.EXPECT().Neighbors(2).Return([]int{3})
			network.EXPECT().Send(2, 3, textMatcher(Election))
			Expect(b.Handle(p, from(msg.Broadcast, Election))).To(BeTrue())
		})

		It("should become the coordinator after the election time", func() {
			for i := int32(5); i <= 5+ElectionTime; i++ {
				b.Handle(p, tick(i))
			}
			Expect(b.Coordinator()).To(Equal(NoCoordinator))

			network.EXPECT().Neighbors(2).Return([]int{3})
			network.EXPECT().Send(2, 3, textMatcher(Victory))

			b.Handle(p, tick(6+ElectionTime))

			Expect(b.Coordinator()).To(Equal(2))
			Expect(b.Electing()).To(BeFalse())
		})

		It("should start over when alive came but no victory", func() {
			Expect(b.Handle(p, from(3, Alive))).To(BeTrue())

			b.Handle(p, tick(0))

			network.EXPECT().Neighbors(2).Return([]int{3})
			network.EXPECT().Send(2, 3, textMatcher(Election))

			b.Handle(p, tick(ElectionTime+1))

			Expect(b.Coordinator()).To(Equal(NoCoordinator))
			Expect(b.Electing()).To(BeTrue())
		})
	})
})
