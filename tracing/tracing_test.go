package tracing

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/maxmuv/dos/sim/msg"
	"github.com/maxmuv/dos/sim/network"
	"github.com/maxmuv/dos/sim/process"
	"github.com/maxmuv/dos/sim/timing"
)

var _ = Describe("Message tracing", func() {
	var (
		mockCtrl *gomock.Controller
		backend  *MockDataRecorder
		clock    *timing.ManualClock
		layer    *network.Layer
		receiver *process.Process
		tracer   *MsgTracer
		entries  []MsgTraceEntry
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backend = NewMockDataRecorder(mockCtrl)
		clock = timing.NewManualClock()
		layer = network.MakeBuilder().WithClock(clock).Build()
		entries = nil

		var err error
		receiver, err = process.MakeBuilder().
			WithNetwork(layer).
			WithClock(clock).
			Build(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(receiver.RegisterHandler("PING", process.HandlerFunc(
			func(_ *process.Process, m *msg.Message) bool {
				return m.Text() == "PING"
			}))).To(Succeed())

		backend.EXPECT().CreateTable(MsgTableName, MsgTraceEntry{})
		backend.EXPECT().InsertData(MsgTableName, gomock.Any()).
			Do(func(_ string, e any) {
				entries = append(entries, e.(MsgTraceEntry))
			}).AnyTimes()

		tracer = NewMsgTracer(backend)
		Collect(layer, tracer)
		Collect(receiver, tracer)
	})

	AfterEach(func() {
		layer.Close()
		mockCtrl.Finish()
	})

	It("should record sends and deliveries", func() {
		clock.Set(3)
		orig := msg.New(msg.String("PING"))
		Expect(layer.Send(msg.Broadcast, 0, orig)).To(Succeed())
		Expect(receiver.Step()).To(BeTrue())

		Expect(entries).To(HaveLen(2))
		Expect(entries[0].Event).To(Equal(EventSend))
		Expect(entries[0].Location).To(Equal("Network"))
		Expect(entries[0].Src).To(Equal(msg.Broadcast))
		Expect(entries[0].Dst).To(Equal(0))
		Expect(entries[0].Time).To(Equal(int64(3)))
		Expect(entries[0].Text).To(Equal("PING"))

		Expect(entries[1].Event).To(Equal(EventDeliver))
		Expect(entries[1].Location).To(Equal("Process[0]"))
		Expect(entries[1].Detail).To(Equal("PING"))
		Expect(entries[1].MsgID).To(Equal(entries[0].MsgID))
		Expect(entries[1].MsgID).NotTo(Equal(orig.ID))

		Expect(tracer.Counts()).To(Equal(map[string]int{
			EventSend:    1,
			EventDeliver: 1,
		}))
	})

	It("should record drops with their reason", func() {
		Expect(layer.Send(0, 7, msg.New(msg.String("PING")))).NotTo(Succeed())

		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Event).To(Equal(EventDrop))
		Expect(entries[0].Detail).To(Equal("size too big"))
	})

	It("should record unclaimed messages", func() {
		Expect(layer.Send(0, 0, msg.New(msg.String("PONG")))).To(Succeed())
		receiver.Step()

		Expect(entries[1].Event).To(Equal(EventUnclaimed))
	})

	It("should flush through the backend", func() {
		backend.EXPECT().Flush()

		tracer.Flush()
	})

	It("should refuse the same hook twice", func() {
		Expect(func() { Collect(layer, tracer) }).To(Panic())
	})
})

var _ = Describe("MsgLogger", func() {
	It("should print one line per event", func() {
		buf := new(bytes.Buffer)
		layer := network.MakeBuilder().WithClock(timing.NewManualClock()).Build()
		defer layer.Close()

		q := NewMsgLogger(log.New(buf, "", 0))
		Collect(layer, q)

		Expect(layer.RegisterProcess(0, nopQueue{})).To(Succeed())
		Expect(layer.Send(0, 0, msg.New(msg.String("HELLO")))).To(Succeed())

		Expect(buf.String()).To(HavePrefix("0,Network,send,0,0,\"HELLO\",,"))
	})
})

type nopQueue struct{}

func (nopQueue) Name() string { return "Nop" }

func (nopQueue) Enqueue(*msg.Message) {}

func (nopQueue) Len() int { return 0 }

var _ = Describe("MsgTracer without backend", func() {
	It("should only count", func() {
		layer := network.MakeBuilder().WithClock(timing.NewManualClock()).Build()
		defer layer.Close()

		tracer := NewMsgTracer(nil)
		Collect(layer, tracer)

		_ = layer.Send(0, 3, msg.New())
		tracer.Flush()

		Expect(tracer.Counts()).To(Equal(map[string]int{EventDrop: 1}))
	})
})
