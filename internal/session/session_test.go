package session_test

import (
	"math"
	"sync"

	"github.com/golang/geo/r2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/armik/internal/kinematics"
	"github.com/san-kum/armik/internal/session"
)

var arm = []float64{150, 120, 90}

var _ = Describe("Session", func() {
	var s *session.Session

	BeforeEach(func() {
		var err error
		s, err = session.New(arm, session.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("places the base and target from the viewport", func() {
			f := s.Snapshot()
			Expect(f.Base).To(Equal(r2.Point{X: 360, Y: 351}))
			Expect(f.Target.X).To(BeNumerically("~", 400, 1e-9))
			Expect(f.Target.Y).To(BeNumerically("~", 140.4, 1e-9))
		})

		It("extends the pose straight from the base", func() {
			f := s.Snapshot()
			Expect(f.Pose).To(HaveLen(4))
			Expect(f.Pose.Effector()).To(Equal(r2.Point{X: 720, Y: 351}))
		})

		It("rejects bad inputs", func() {
			_, err := session.New([]float64{10, 0}, session.DefaultConfig())
			Expect(err).To(MatchError(kinematics.ErrContractViolation))

			cfg := session.DefaultConfig()
			cfg.Solver.MaxIterations = 0
			_, err = session.New(arm, cfg)
			Expect(err).To(MatchError(kinematics.ErrOptionBounds))

			cfg = session.DefaultConfig()
			cfg.Width = 0
			_, err = session.New(arm, cfg)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Frame", func() {
		It("reaches the resting target", func() {
			f, err := s.Frame()
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Index).To(Equal(0))
			Expect(f.Stats.Reachable).To(BeTrue())
			Expect(kinematics.Distance(f.Pose.Effector(), f.Target)).To(BeNumerically("<=", kinematics.DefaultTolerance))
			Expect(kinematics.MaxRigidityError(f.Pose, arm)).To(BeNumerically("<", 1e-6))
		})

		It("numbers frames and warm-starts from the previous pose", func() {
			first, _ := s.Frame()
			second, _ := s.Frame()
			Expect(second.Index).To(Equal(first.Index + 1))
			Expect(second.Stats.Iterations).To(Equal(0))
			Expect(second.Pose).To(Equal(first.Pose))
		})

		It("returns copies of the pose", func() {
			f, _ := s.Frame()
			f.Pose[1] = r2.Point{X: -1, Y: -1}
			Expect(s.Snapshot().Pose[1]).NotTo(Equal(r2.Point{X: -1, Y: -1}))
		})

		It("surfaces contract violations from a non-finite target", func() {
			s.SetTarget(r2.Point{X: 1, Y: 1})
			_, err := s.Frame()
			Expect(err).NotTo(HaveOccurred())

			s.SetTarget(r2.Point{X: math.NaN(), Y: 1})
			_, err = s.Frame()
			Expect(err).To(MatchError(kinematics.ErrContractViolation))
		})
	})

	Describe("pointer input", func() {
		It("follows the pointer only while dragging", func() {
			s.PointerMove(r2.Point{X: 10, Y: 10})
			f, _ := s.Frame()
			Expect(f.Target).NotTo(Equal(r2.Point{X: 10, Y: 10}))

			s.PointerDown(r2.Point{X: 300, Y: 200})
			f, _ = s.Frame()
			Expect(f.Dragging).To(BeTrue())
			Expect(f.Target).To(Equal(r2.Point{X: 300, Y: 200}))
			Expect(kinematics.Distance(f.Pose.Effector(), f.Target)).To(BeNumerically("<=", kinematics.DefaultTolerance))

			s.PointerMove(r2.Point{X: 500, Y: 250})
			s.PointerUp()
			s.PointerMove(r2.Point{X: 10, Y: 10})
			f, _ = s.Frame()
			Expect(f.Dragging).To(BeFalse())
			Expect(f.Target).To(Equal(r2.Point{X: 500, Y: 250}))
		})

		It("applies queued events in order", func() {
			s.SetTarget(r2.Point{X: 1, Y: 1})
			s.SetTarget(r2.Point{X: 300, Y: 200})
			f, _ := s.Frame()
			Expect(f.Target).To(Equal(r2.Point{X: 300, Y: 200}))
		})

		It("accepts events from many goroutines", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					for j := 0; j < 50; j++ {
						s.SetTarget(r2.Point{X: 300 + float64(i), Y: 200 + float64(j)})
					}
				}(i)
			}
			for i := 0; i < 10; i++ {
				_, err := s.Frame()
				Expect(err).NotTo(HaveOccurred())
			}
			wg.Wait()

			f, err := s.Frame()
			Expect(err).NotTo(HaveOccurred())
			Expect(kinematics.MaxRigidityError(f.Pose, arm)).To(BeNumerically("<", 1e-6))
			Expect(f.Pose[0]).To(Equal(f.Base))
		})
	})

	Describe("Resize", func() {
		It("recentres the base and reinitialises the pose", func() {
			s.Resize(1000, 600)
			f, _ := s.Frame()
			Expect(f.Base).To(Equal(r2.Point{X: 500, Y: 450}))
			Expect(f.Target).To(Equal(r2.Point{X: 540, Y: 180}))
			Expect(f.Pose[0]).To(Equal(f.Base))
			w, h := s.Viewport()
			Expect(w).To(Equal(1000.0))
			Expect(h).To(Equal(600.0))
		})

		It("keeps a dragged target", func() {
			s.PointerDown(r2.Point{X: 250, Y: 300})
			s.Resize(1000, 600)
			f, _ := s.Frame()
			Expect(f.Target).To(Equal(r2.Point{X: 250, Y: 300}))
		})

		It("ignores empty viewports", func() {
			s.Resize(0, 600)
			f, _ := s.Frame()
			Expect(f.Base).To(Equal(r2.Point{X: 360, Y: 351}))
		})
	})

	It("reports its lengths as a copy", func() {
		ls := s.Lengths()
		ls[0] = 1
		Expect(s.Lengths()[0]).To(Equal(150.0))
	})
})

var _ = DescribeTable("ParseEventKind",
	func(name string, want session.EventKind) {
		got, err := session.ParseEventKind(name)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
		Expect(got.String()).To(Equal(name))
	},
	Entry("down", "down", session.PointerDown),
	Entry("move", "move", session.PointerMove),
	Entry("up", "up", session.PointerUp),
	Entry("resize", "resize", session.Resize),
	Entry("target", "target", session.SetTarget),
)

var _ = It("rejects unknown event kinds", func() {
	_, err := session.ParseEventKind("wheel")
	Expect(err).To(MatchError(ContainSubstring("unknown event type")))
})
