package orchestrator_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/klog/v2"

	"git.srvlab.io/whiskey/attach-nas/pkg/config"
	"git.srvlab.io/whiskey/attach-nas/pkg/mount"
	"git.srvlab.io/whiskey/attach-nas/pkg/orchestrator"
	"git.srvlab.io/whiskey/attach-nas/test/mock"
)

const nasConfig = `
[NAS]
ip = 192.168.1.10
username = bob
password = pw
shares = docs,media
letters = J,K
`

var _ = Describe("Mounting a configured share", func() {
	var (
		ctx  context.Context
		fake *mock.NetUse
		orch *orchestrator.Orchestrator
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger := klog.Background()

		cfg, err := config.Parse(logger, []byte(nasConfig))
		Expect(err).NotTo(HaveOccurred())

		fake = mock.NewNetUse("C")
		// Connections are read by parsing the rendered net use listing
		orch = orchestrator.New(logger, cfg, orchestrator.Options{
			Runner: fake,
			Table:  mount.NewNetUseTable(logger, fake),
			Drives: fake,
		})
	})

	Context("when J and K are both free", func() {
		It("mounts media on its preferred letter K", func() {
			r := orch.Mount(ctx, "NAS", 1)

			Expect(r.Outcome).To(Equal(orchestrator.OutcomeSuccess))
			Expect(r.Letter).To(Equal("K"))
			Expect(fake.MappedLetters()).To(ConsistOf("K"))
		})

		It("reports the existing letter on a second attempt without running net use again", func() {
			Expect(orch.Mount(ctx, "NAS", 1).Outcome).To(Equal(orchestrator.OutcomeSuccess))

			r := orch.Mount(ctx, "NAS", 1)
			Expect(r.Outcome).To(Equal(orchestrator.OutcomeNoOp))
			Expect(r.Message).To(Equal(`\\192.168.1.10\media - already mounted at K`))
			Expect(fake.GetMountCalls()).To(HaveLen(1))
		})
	})

	Context("when K is occupied by another host", func() {
		BeforeEach(func() {
			fake.AddConnection("K", "192.168.1.99", "scratch")
		})

		It("refuses instead of falling back to another letter", func() {
			r := orch.Mount(ctx, "NAS", 1)

			Expect(r.Outcome).To(Equal(orchestrator.OutcomeConflict))
			Expect(r.Message).To(Equal("Drive letter K - already mounted."))
			Expect(fake.GetMountCalls()).To(BeEmpty())
		})

		It("still mounts docs on J when mounting everything", func() {
			r := orch.MountAll(ctx, "NAS")

			Expect(r.Message).To(Equal("Not all [2] drives mounted successfully. Failed mounts: media"))
			Expect(fake.MappedLetters()).To(ConsistOf("K", "J"))
		})
	})

	Describe("unmounting", func() {
		It("does not run net use for a free letter", func() {
			r := orch.Unmount(ctx, "K")

			Expect(r.Message).To(Equal("Drive letter K - not mounted."))
			Expect(fake.GetUnmountCalls()).To(BeEmpty())
		})

		It("removes everything mounted for the section's host", func() {
			Expect(orch.MountAll(ctx, "NAS").Outcome).To(Equal(orchestrator.OutcomeSuccess))
			fake.AddConnection("P", "10.1.1.1", "elsewhere")

			r := orch.UnmountAllConfigured(ctx)

			Expect(r.Message).To(Equal("Success. All connections unmounted successfully."))
			Expect(fake.MappedLetters()).To(ConsistOf("P"))
		})

		It("drops unrelated connections only when unmounting everything", func() {
			fake.AddConnection("P", "10.1.1.1", "elsewhere")

			r := orch.UnmountEverything(ctx)

			Expect(r.OK()).To(BeTrue())
			Expect(fake.MappedLetters()).To(BeEmpty())
		})
	})

	Describe("free letter selection", func() {
		It("never offers A, B or a used letter", func() {
			fake.AddConnection("Z", "10.1.1.1", "elsewhere")

			free, err := orch.FreeLetters(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(free).To(HaveEach(MatchRegexp(`^[D-Y]$`)))
		})
	})
})
