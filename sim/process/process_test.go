package process

import (
	"bytes"
	"log"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/maxmuv/dos/sim/hooking"
	"github.com/maxmuv/dos/sim/msg"
	"github.com/maxmuv/dos/sim/simerr"
	"github.com/maxmuv/dos/sim/timing"
)

var _ = DescribeTable("IsMine",
	func(prefix, text string, expected bool) {
		Expect(IsMine(prefix, text)).To(Equal(expected))
	},
	Entry("system message", "BULLY", "*TIME", true),
	Entry("bare star", "BULLY", "*", true),
	Entry("own message", "BULLY", "BULLY_ELECTION", true),
	Entry("shortest own message", "TEST", "TEST_X", true),
	Entry("prefix and underscore only", "TEST", "TEST_", false),
	Entry("prefix only", "TEST", "TEST", false),
	Entry("other module", "TEST", "BULLY_ALIVE", false),
	Entry("no underscore", "TEST", "TESTXHELLO", false),
	Entry("empty text", "TEST", "", false),
)

var _ = Describe("Process", func() {
	var (
		mockCtrl *gomock.Controller
		network  *MockNetwork
		clock    *timing.ManualClock
		logBuf   *bytes.Buffer
		p        *Process
	)

	ready := func(args ...msg.Arg) *msg.Message {
		m := msg.New(args...)
		m.From = 1
		m.To = 3
		m.DeliveryTime = clock.Now()

		return m
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		network = NewMockNetwork(mockCtrl)
		clock = timing.NewManualClock()
		logBuf = new(bytes.Buffer)

		network.EXPECT().RegisterProcess(3, gomock.Any()).Return(nil)

		var err error
		p, err = MakeBuilder().
			WithNetwork(network).
			WithClock(clock).
			WithLogger(log.New(logBuf, "", 0)).
			Build(3)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		p.Stop()
		mockCtrl.Finish()
	})

	It("should fail to build when the network refuses the queue", func() {
		network.EXPECT().RegisterProcess(3, gomock.Any()).
			Return(simerr.DuplicateItems)

		_, err := MakeBuilder().WithNetwork(network).WithClock(clock).Build(3)

		Expect(err).To(Equal(simerr.DuplicateItems))
	})

	It("should send and broadcast through the network", func() {
		m := msg.New(msg.String("PING"))
		network.EXPECT().Send(3, 5, m).Return(nil)
		network.EXPECT().Send(3, msg.Broadcast, m).Return(simerr.TimeOut)

		Expect(p.Send(5, m)).To(Succeed())
		Expect(p.Broadcast(m)).To(Equal(simerr.TimeOut))
	})

	It("should ask the network for neighbors", func() {
		network.EXPECT().Neighbors(3).Return([]int{1, 4})

		Expect(p.Neighbors()).To(Equal([]int{1, 4}))
	})

	It("should reject duplicated handler names", func() {
		h := NewMockHandler(mockCtrl)

		Expect(p.RegisterHandler("A", h)).To(Succeed())
		Expect(p.RegisterHandler("A", h)).To(Equal(simerr.DuplicateItems))
		Expect(p.RegisterHandler("B", nil)).To(Equal(simerr.ObjectIsNull))
		Expect(p.HandlerNames()).To(Equal([]string{"A"}))
		Expect(p.Handler("A")).To(BeIdenticalTo(h))
		Expect(p.Handler("C")).To(BeNil())
	})

	It("should do nothing when no message is ready", func() {
		m := ready(msg.String("PING"))
		m.DeliveryTime = 2
		p.Queue().Enqueue(m)

		clock.Set(1)

		Expect(p.Step()).To(BeFalse())
		Expect(p.Queue().Len()).To(Equal(1))
	})

	It("should stop at the first handler that claims", func() {
		first := NewMockHandler(mockCtrl)
		second := NewMockHandler(mockCtrl)
		third := NewMockHandler(mockCtrl)
		Expect(p.RegisterHandler("first", first)).To(Succeed())
		Expect(p.RegisterHandler("second", second)).To(Succeed())
		Expect(p.RegisterHandler("third", third)).To(Succeed())

		m := ready(msg.String("PING"))
		p.Queue().Enqueue(m)

		gomock.InOrder(
			first.EXPECT().Handle(p, m).Return(false),
			second.EXPECT().Handle(p, m).Return(true),
		)

		var claimedBy interface{}
		p.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == HookPosAfterDispatch {
				claimedBy = ctx.Detail
			}
		}))

		Expect(p.Step()).To(BeTrue())
		Expect(claimedBy).To(Equal("second"))
	})

	It("should show every handler the message from the start", func() {
		var seen []string
		read := HandlerFunc(func(_ *Process, m *msg.Message) bool {
			seen = append(seen, m.MustString())
			return false
		})
		Expect(p.RegisterHandler("a", read)).To(Succeed())
		Expect(p.RegisterHandler("b", read)).To(Succeed())

		p.Queue().Enqueue(ready(msg.String("PING"), msg.Int(1)))
		p.Step()

		Expect(seen).To(Equal([]string{"PING", "PING"}))
	})

	It("should report unclaimed messages", func() {
		unclaimed := 0
		p.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == HookPosUnclaimed {
				unclaimed++
			}
		}))

		p.Queue().Enqueue(ready(msg.String("NOBODY_CARES")))

		Expect(p.Step()).To(BeTrue())
		Expect(unclaimed).To(Equal(1))
		Expect(p.Queue().Len()).To(Equal(0))
	})

	It("should drop a message that a handler cannot decode", func() {
		next := NewMockHandler(mockCtrl)
		Expect(p.RegisterHandler("decoder", HandlerFunc(
			func(_ *Process, m *msg.Message) bool {
				m.MustString()
				m.MustInt()
				return false
			}))).To(Succeed())
		Expect(p.RegisterHandler("next", next)).To(Succeed())

		p.Queue().Enqueue(ready(msg.String("PING")))

		Expect(p.Step()).To(BeTrue())
		Expect(logBuf.String()).To(ContainSubstring("decoder"))
		Expect(logBuf.String()).To(ContainSubstring("PING"))
	})

	It("should not hide other panics", func() {
		Expect(p.RegisterHandler("broken", HandlerFunc(
			func(_ *Process, _ *msg.Message) bool {
				panic("broken handler")
			}))).To(Succeed())

		p.Queue().Enqueue(ready(msg.String("PING")))

		Expect(func() { p.Step() }).To(PanicWith("broken handler"))
	})

	It("should poll in the background until stopped", func() {
		received := make(chan string, 1)
		Expect(p.RegisterHandler("probe", HandlerFunc(
			func(_ *Process, m *msg.Message) bool {
				received <- m.MustString()
				return true
			}))).To(Succeed())

		Expect(p.Alive()).To(BeFalse())
		p.Start()
		Expect(p.Alive()).To(BeTrue())

		p.Queue().Enqueue(ready(msg.String("PING")))
		Eventually(received).Should(Receive(Equal("PING")))

		p.Stop()
		Expect(p.Alive()).To(BeFalse())

		p.Queue().Enqueue(ready(msg.String("LATE")))
		Consistently(received, 20*time.Millisecond).ShouldNot(Receive())
	})

	It("should not start after Stop", func() {
		p.Stop()
		p.Start()

		Expect(p.Alive()).To(BeFalse())
	})
})

var _ = Describe("Registry", func() {
	var r *Registry

	BeforeEach(func() {
		r = NewRegistry()
	})

	It("should create a new handler for every call", func() {
		Expect(r.Register("TEST", func() Handler {
			return &countingHandler{}
		})).To(Succeed())

		a, err := r.New("TEST")
		Expect(err).NotTo(HaveOccurred())
		b, _ := r.New("TEST")

		Expect(a).NotTo(BeIdenticalTo(b))
	})

	It("should reject duplicates and unknown names", func() {
		f := func() Handler { return &countingHandler{} }

		Expect(r.Register("B", f)).To(Succeed())
		Expect(r.Register("A", f)).To(Succeed())
		Expect(r.Register("A", f)).To(Equal(simerr.DuplicateItems))
		Expect(r.Register("C", nil)).To(Equal(simerr.ObjectIsNull))

		_, err := r.New("C")
		Expect(err).To(Equal(simerr.ItemNotFound))
		Expect(r.Names()).To(Equal([]string{"A", "B"}))
	})
})

type countingHandler struct {
	count int
}

func (h *countingHandler) Handle(_ *Process, _ *msg.Message) bool {
	h.count++
	return true
}
