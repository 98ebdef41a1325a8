package pendulum_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Trawczynski/double-pendulum/internal/integrators"
	"github.com/Trawczynski/double-pendulum/internal/pendulum"
)

var pixelParams = pendulum.Params{R1: 120, R2: 120, M1: 10, M2: 10, G: 1}

func stepN(p *pendulum.Pendulum, m integrators.Method, n int) {
	for i := 0; i < n; i++ {
		p.Step(m)
	}
}

var _ = Describe("Pendulum", func() {
	Describe("construction", func() {
		It("starts at rest with the given angles", func() {
			p := pendulum.New(pixelParams, 0.4, -0.2, false)
			Expect(p.A1).To(Equal(0.4))
			Expect(p.A2).To(Equal(-0.2))
			Expect(p.V1).To(BeZero())
			Expect(p.V2).To(BeZero())
			Expect(p.Params).To(Equal(pixelParams))
		})

		It("only attaches an estimator when asked", func() {
			Expect(pendulum.New(pixelParams, 1, 1, false).Tracking()).To(BeFalse())
			Expect(pendulum.New(pixelParams, 1, 1, true).Tracking()).To(BeTrue())
		})

		It("clones parameters and angles but not velocities", func() {
			src := pendulum.New(pixelParams, math.Pi/2, math.Pi/3, false)
			stepN(src, integrators.MethodRK4, 5)

			clone := pendulum.FromPendulum(src, true)
			Expect(clone.Params).To(Equal(src.Params))
			Expect(clone.A1).To(Equal(src.A1))
			Expect(clone.A2).To(Equal(src.A2))
			Expect(clone.V1).To(BeZero())
			Expect(clone.V2).To(BeZero())
			Expect(clone.Tracking()).To(BeTrue())
		})
	})

	Describe("derived quantities", func() {
		It("places the tips from the angles", func() {
			p := pendulum.New(pendulum.Params{R1: 2, R2: 3, M1: 1, M2: 1, G: 9.8}, math.Pi/2, 0, false)
			Expect(p.X1()).To(BeNumerically("~", 2, 1e-12))
			Expect(p.Y1()).To(BeNumerically("~", 0, 1e-12))
			Expect(p.X2()).To(BeNumerically("~", 2, 1e-12))
			Expect(p.Y2()).To(BeNumerically("~", 3, 1e-12))
		})

		It("derives the proxy vector from the first bob", func() {
			p := pendulum.New(pendulum.Params{R1: 2, R2: 1, M1: 1, M2: 1, G: 1}, 0, 0, false)
			p.V1 = 3
			Expect(p.DX1()).To(BeNumerically("~", 6, 1e-12))
			Expect(p.DY1()).To(BeNumerically("~", 0, 1e-12))
		})

		It("reports potential energy from the pivot height", func() {
			p := pendulum.New(pendulum.Params{R1: 1, R2: 2, M1: 3, M2: 4, G: 10}, 0, 0, false)
			Expect(p.KineticEnergy()).To(BeZero())
			Expect(p.PotentialEnergy()).To(BeNumerically("~", -(7*10*1)-(4*10*2), 1e-9))
			Expect(p.MechanicalEnergy()).To(BeNumerically("~", 150, 1e-9))
			Expect(p.TotalEnergy()).To(BeNumerically("~", -150, 1e-9))
		})

		It("uses its own gravity for the potential", func() {
			weak := pendulum.New(pendulum.Params{R1: 1, R2: 1, M1: 1, M2: 1, G: 1}, 0.3, 0.1, false)
			strong := pendulum.New(pendulum.Params{R1: 1, R2: 1, M1: 1, M2: 1, G: 9.8}, 0.3, 0.1, false)
			Expect(strong.PotentialEnergy()).To(BeNumerically("~", 9.8*weak.PotentialEnergy(), 1e-9))
		})

		It("computes kinetic energy with the coupling term", func() {
			p := pendulum.New(pendulum.Params{R1: 1, R2: 1, M1: 1, M2: 1, G: 1}, 0, 0, false)
			p.V1, p.V2 = 1, 1
			// 0.5*1 + 0.5*(1 + 1 + 2)
			Expect(p.KineticEnergy()).To(BeNumerically("~", 2.5, 1e-12))
			Expect(p.MechanicalEnergy()).To(Equal(p.KineticEnergy() - p.PotentialEnergy()))
		})
	})

	Describe("equations of motion", func() {
		It("is at equilibrium hanging straight down", func() {
			p := pendulum.New(pixelParams, 0, 0, false)
			acc1, acc2 := p.Accelerations()
			Expect(acc1).To(BeNumerically("~", 0, 1e-15))
			Expect(acc2).To(BeNumerically("~", 0, 1e-15))

			dx := pixelParams.Derive(p.Vector())
			for _, v := range dx {
				Expect(v).To(BeNumerically("~", 0, 1e-15))
			}
		})

		It("agrees between the two forms", func() {
			for _, x := range [][4]float64{{0.3, -0.4, 0.05, 0.02}, {2.0, 1.1, -0.1, 0.3}} {
				acc1, acc2 := pixelParams.Accelerations(x[0], x[1], x[2], x[3])
				dx := pixelParams.Derive(x[:])
				Expect(dx[0]).To(Equal(x[2]))
				Expect(dx[1]).To(Equal(x[3]))
				Expect(dx[2]).To(BeNumerically("~", acc1, 1e-9))
				Expect(dx[3]).To(BeNumerically("~", acc2, 1e-9))
			}
		})

		It("propagates a singular denominator as NaN", func() {
			p := pendulum.New(pendulum.Params{R1: 1, R2: 1, M1: 0, M2: 1, G: 1}, 0.5, 0.5, false)
			p.StepForwardEuler()
			Expect(math.IsNaN(p.V1)).To(BeTrue())
			Expect(p.Vector().IsValid()).To(BeFalse())

			p.StepForwardEuler()
			Expect(math.IsNaN(p.A1)).To(BeTrue())
			Expect(math.IsNaN(p.X1())).To(BeTrue())
		})
	})

	Describe("stepping", func() {
		It("moves angles with the old velocities under forward Euler", func() {
			p := pendulum.New(pixelParams, 1.0, 0.5, false)
			acc1, acc2 := p.Accelerations()
			p.StepForwardEuler()
			Expect(p.A1).To(Equal(1.0))
			Expect(p.A2).To(Equal(0.5))
			Expect(p.V1).To(Equal(acc1))
			Expect(p.V2).To(Equal(acc2))
		})

		It("moves angles with the new velocities under semi-implicit Euler", func() {
			p := pendulum.New(pixelParams, 1.0, 0.5, false)
			acc1, acc2 := p.Accelerations()
			p.StepSemiImplicitEuler()
			Expect(p.V1).To(Equal(acc1))
			Expect(p.V2).To(Equal(acc2))
			Expect(p.A1).To(Equal(1.0 + acc1))
			Expect(p.A2).To(Equal(0.5 + acc2))
		})

		It("follows the derivative form for one RK4 step from horizontal", func() {
			params := pendulum.Params{R1: 1, R2: 1, M1: 1, M2: 1, G: 9.8}
			p := pendulum.New(params, math.Pi/2, math.Pi/2, false)

			k1 := params.Derive(p.Vector())
			Expect(k1[2]).To(BeNumerically("~", -9.8, 1e-12))
			Expect(k1[3]).To(BeNumerically("~", 0, 1e-12))

			x := p.Vector()
			k2 := params.Derive(x.Add(k1.Scale(0.5)))
			k3 := params.Derive(x.Add(k2.Scale(0.5)))
			k4 := params.Derive(x.Add(k3))

			p.StepRK4()

			want := make([]float64, 4)
			for i := range want {
				want[i] = x[i] + (1.0/6)*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
			}
			Expect(p.A1).To(BeNumerically("~", want[0], 1e-9))
			Expect(p.A2).To(BeNumerically("~", want[1], 1e-9))
			Expect(p.V1).To(BeNumerically("~", want[2], 1e-9))
			Expect(p.V2).To(BeNumerically("~", want[3], 1e-9))

			Expect(p.A1).To(BeNumerically("<", math.Pi/2))
			Expect(p.V1).To(BeNumerically("<", 0))
			Expect(p.V2).NotTo(BeZero())
		})

		DescribeTable("keeps the first rod at constant length",
			func(m integrators.Method) {
				p := pendulum.New(pixelParams, 0.3, 0.2, false)
				for i := 0; i < 100; i++ {
					p.Step(m)
					r := p.X1()*p.X1() + p.Y1()*p.Y1()
					Expect(r).To(BeNumerically("~", p.R1*p.R1, 1e-9*p.R1*p.R1))
				}
			},
			Entry("forward Euler", integrators.MethodForwardEuler),
			Entry("semi-implicit Euler", integrators.MethodSemiImplicitEuler),
			Entry("RK4", integrators.MethodRK4),
		)

		It("is deterministic", func() {
			a := pendulum.New(pixelParams, math.Pi/2, math.Pi/2, true)
			b := pendulum.New(pixelParams, math.Pi/2, math.Pi/2, true)
			sequence := []integrators.Method{
				integrators.MethodRK4, integrators.MethodForwardEuler,
				integrators.MethodSemiImplicitEuler, integrators.MethodRK4,
			}
			for i := 0; i < 200; i++ {
				m := sequence[i%len(sequence)]
				a.Step(m)
				b.Step(m)
			}
			Expect(a.Vector()).To(Equal(b.Vector()))
			la, _ := a.Lyapunov()
			lb, _ := b.Lyapunov()
			Expect(la).To(Equal(lb))
		})

		It("drifts less in energy under RK4 than under forward Euler", func() {
			rk4 := pendulum.New(pixelParams, 0.5, 0.5, false)
			euler := pendulum.FromPendulum(rk4, false)
			e0 := rk4.TotalEnergy()

			stepN(rk4, integrators.MethodRK4, 60)
			stepN(euler, integrators.MethodForwardEuler, 60)

			rk4Drift := math.Abs(rk4.TotalEnergy() - e0)
			eulerDrift := math.Abs(euler.TotalEnergy() - e0)
			Expect(rk4Drift).To(BeNumerically("<", eulerDrift))
		})
	})

	Describe("chaos tracking", func() {
		It("stays absent when never enabled", func() {
			p := pendulum.New(pixelParams, math.Pi/2, math.Pi/2, false)
			p.StepForwardEuler()
			p.StepSemiImplicitEuler()
			p.StepRK4()
			_, ok := p.Lyapunov()
			Expect(ok).To(BeFalse())
			Expect(p.Estimator()).To(BeNil())
		})

		It("becomes nonzero from the third step", func() {
			p := pendulum.New(pixelParams, math.Pi/2, math.Pi/2, true)

			est, ok := p.Lyapunov()
			Expect(ok).To(BeTrue())
			Expect(est).To(BeZero())

			p.StepRK4()
			est, _ = p.Lyapunov()
			Expect(est).To(BeZero())

			p.StepRK4()
			est, _ = p.Lyapunov()
			Expect(est).To(BeZero())
			Expect(p.Estimator().Samples()).To(Equal(2))

			p.StepRK4()
			est, _ = p.Lyapunov()
			Expect(est).NotTo(BeZero())
		})

		It("feeds the first bob's proxy vector", func() {
			p := pendulum.New(pixelParams, 1.2, 0.4, true)
			p.StepSemiImplicitEuler()
			cur, ok := p.Estimator().Current()
			Expect(ok).To(BeTrue())
			Expect(cur.X).To(Equal(p.DX1()))
			Expect(cur.Y).To(Equal(p.DY1()))
		})
	})

	Describe("Reset", func() {
		var p *pendulum.Pendulum

		BeforeEach(func() {
			p = pendulum.New(pixelParams, math.Pi/2, math.Pi/2, true)
			stepN(p, integrators.MethodRK4, 10)
		})

		It("reinitialises the dynamical variables and parameters", func() {
			p.Reset(100, 90, 5, 6, 0.3, 0.4)
			Expect(p.V1).To(BeZero())
			Expect(p.V2).To(BeZero())
			Expect(p.A1).To(Equal(0.3))
			Expect(p.A2).To(Equal(0.4))
			Expect(p.Params).To(Equal(pendulum.Params{R1: 100, R2: 90, M1: 5, M2: 6, G: pixelParams.G}))
		})

		It("keeps parameters when reset with the same values", func() {
			p.Reset(p.R1, p.R2, p.M1, p.M2, 1, 1)
			Expect(p.Params).To(Equal(pixelParams))
		})

		It("replaces the estimator", func() {
			old := p.Estimator()
			Expect(old.Samples()).To(Equal(10))

			p.Reset(p.R1, p.R2, p.M1, p.M2, 1, 1)
			Expect(p.Estimator()).NotTo(BeIdenticalTo(old))
			Expect(p.Estimator().Samples()).To(BeZero())
			est, ok := p.Lyapunov()
			Expect(ok).To(BeTrue())
			Expect(est).To(BeZero())
		})

		It("does not start tracking on an untracked pendulum", func() {
			q := pendulum.New(pixelParams, 1, 1, false)
			q.Reset(1, 1, 1, 1, 0, 0)
			Expect(q.Tracking()).To(BeFalse())
		})
	})

	Describe("Params.Validate", func() {
		It("accepts positive parameters", func() {
			Expect(pixelParams.Validate()).To(Succeed())
			Expect(pendulum.DefaultParams().Validate()).To(Succeed())
		})

		It("rejects zero, negative and non-finite values", func() {
			for _, bad := range []pendulum.Params{
				{R1: 0, R2: 1, M1: 1, M2: 1, G: 1},
				{R1: 1, R2: -1, M1: 1, M2: 1, G: 1},
				{R1: 1, R2: 1, M1: 1, M2: 1, G: math.NaN()},
				{R1: 1, R2: 1, M1: math.Inf(1), M2: 1, G: 1},
			} {
				Expect(bad.Validate()).To(MatchError(pendulum.ErrInvalidParams))
			}
		})
	})
})
