package integration

import (
	"net/http"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/stacklok/roster-sync/internal/api/v1"
	"github.com/stacklok/roster-sync/internal/reconcile"
	"github.com/stacklok/roster-sync/internal/status"
	"github.com/stacklok/roster-sync/test-integration/roster-sync/helpers"
)

var _ = Describe("Reconciliation", func() {
	var (
		env       *environment
		sectionID int64
	)

	jobStatus := func() *status.JobStatus {
		resp, err := env.server.Get("/v1/institutions/foothill/status")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var st status.JobStatus
		Expect(helpers.DecodeJSON(resp, &st)).To(Succeed())
		return &st
	}

	phase := func() status.Phase {
		return jobStatus().Phase
	}

	trigger := func(dryRun bool) {
		path := "/v1/institutions/foothill/reconcile"
		if dryRun {
			path += "?dryRun=true"
		}
		resp, err := env.server.Post(path, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

		var accepted v1.ReconcileResponse
		Expect(helpers.DecodeJSON(resp, &accepted)).To(Succeed())
		Expect(accepted.DryRun).To(Equal(dryRun))
	}

	BeforeEach(func() {
		env = startEnvironment(helpers.ConfigOptions{PersonPattern: `^2[0-9]{7}$`})

		Expect(db.AddCurrentTerm(ctx, "201811", "foothill")).To(Succeed())
		Expect(db.AddSection(ctx, "201811", "33333", "PHYS", "F004A.", "01")).To(Succeed())
		Expect(db.AddPerson(ctx, 1, "20000001", "Emmy", "Noether", "emmy@example.edu")).To(Succeed())
		Expect(db.AddPerson(ctx, 2, "20000002", "Lise", "Meitner", "lise@example.edu")).To(Succeed())
		Expect(db.Register(ctx, "201811", "33333", 1, "RE")).To(Succeed())

		term := env.lms.AddTerm("Fall 2018", "201811")
		course := env.lms.AddCourse("PHYS 4A", term.ID)

		resp, err := env.server.Post("/v1/institutions/foothill/sections",
			v1.CreateSectionRequest{Term: "201811", CRN: "33333", CourseID: course.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		Expect(resp.Body.Close()).To(Succeed())

		ids, err := db.TrackedSectionIDs(ctx, "201811", "33333")
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(HaveLen(1))
		sectionID = ids[0]

		// Drift on both sides: a registration the LMS never saw and an LMS
		// enrollment with no registration behind it.
		Expect(db.Register(ctx, "201811", "33333", 2, "RW")).To(Succeed())
		env.lms.Enroll(sectionID, "20000003")
		// Outside the person pattern, never reconciled.
		env.lms.Enroll(sectionID, "guest-instructor")

		// Page through every listing one item at a time.
		env.lms.SetPageSize(1)
	})

	AfterEach(func() {
		env.stop()
	})

	It("reports differences without correcting them on a dry run", func() {
		trigger(true)

		Eventually(phase, 20*time.Second, 200*time.Millisecond).Should(Equal(status.PhaseComplete))

		st := jobStatus()
		Expect(st.Terms).To(HaveLen(1))
		Expect(st.Terms[0].Term).To(Equal("201811"))
		Expect(st.Terms[0].SourceCount).To(Equal(2))
		Expect(st.Terms[0].TargetCount).To(Equal(2))
		Expect(st.Terms[0].MissingEnrollments).To(Equal(1))
		Expect(st.Terms[0].MissingDrops).To(Equal(1))
		Expect(st.Terms[0].CorrectedEnrollments).To(BeZero())
		Expect(st.Terms[0].CorrectedDrops).To(BeZero())

		Expect(env.lms.ActiveLogins(sectionID)).To(Equal([]string{"20000001", "20000003", "guest-instructor"}))

		reports, err := filepath.Glob(filepath.Join(env.dir, "reports", "foothill-201811-*.json"))
		Expect(err).NotTo(HaveOccurred())
		Expect(reports).To(HaveLen(1))

		By("serving the persisted report")
		resp, err := env.server.Get("/v1/institutions/foothill/reports/201811")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var snapshot reconcile.Snapshot
		Expect(helpers.DecodeJSON(resp, &snapshot)).To(Succeed())
		Expect(snapshot.Report.DryRun).To(BeTrue())
		Expect(snapshot.Report.MissingDrops).To(Equal(1))
		Expect(snapshot.SourceEnrollments).To(HaveLen(2))
	})

	It("corrects both kinds of drift", func() {
		trigger(false)

		Eventually(phase, 20*time.Second, 200*time.Millisecond).Should(Equal(status.PhaseComplete))

		st := jobStatus()
		Expect(st.Terms).To(HaveLen(1))
		Expect(st.Terms[0].CorrectedEnrollments).To(Equal(1))
		Expect(st.Terms[0].CorrectedDrops).To(Equal(1))
		Expect(st.Terms[0].Failures).To(BeZero())

		Expect(env.lms.ActiveLogins(sectionID)).To(Equal([]string{"20000001", "20000002", "guest-instructor"}))

		By("finding nothing left to correct on the next run")
		trigger(true)
		Eventually(func() int {
			st := jobStatus()
			if st.Phase != status.PhaseComplete || len(st.Terms) != 1 {
				return -1
			}
			return st.Terms[0].MissingEnrollments + st.Terms[0].MissingDrops
		}, 20*time.Second, 200*time.Millisecond).Should(BeZero())
	})
})
