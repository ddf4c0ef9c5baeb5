package integration

import (
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/stacklok/roster-sync/internal/api/v1"
	"github.com/stacklok/roster-sync/test-integration/roster-sync/helpers"
)

const (
	eventPersonSync    = 0
	eventStudentEnroll = 1
	eventStudentDrop   = 2
	eventSectionCancel = 3
)

var _ = Describe("Event loop", func() {
	var (
		env       *environment
		sectionID int64
	)

	pendingEvents := func() int {
		n, err := db.PendingEvents(ctx)
		Expect(err).NotTo(HaveOccurred())
		return n
	}

	BeforeEach(func() {
		env = startEnvironment(helpers.ConfigOptions{EventsEnabled: true})

		Expect(db.AddSection(ctx, "201811", "22222", "HIST", "F017A.", "02")).To(Succeed())
		Expect(db.AddPerson(ctx, 1, "20000001", "Grace", "Hopper", "grace@example.edu")).To(Succeed())

		term := env.lms.AddTerm("Fall 2018", "201811")
		course := env.lms.AddCourse("HIST 17A", term.ID)

		resp, err := env.server.Post("/v1/institutions/foothill/sections",
			v1.CreateSectionRequest{Term: "201811", CRN: "22222", CourseID: course.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		Expect(resp.Body.Close()).To(Succeed())

		ids, err := db.TrackedSectionIDs(ctx, "201811", "22222")
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(HaveLen(1))
		sectionID = ids[0]
		Expect(env.lms.ActiveLogins(sectionID)).To(BeEmpty())
	})

	AfterEach(func() {
		env.stop()
	})

	It("applies an enrollment and then a drop", func() {
		Expect(db.Register(ctx, "201811", "22222", 1, "RE")).To(Succeed())
		Expect(db.AddEvent(ctx, eventStudentEnroll, "201811", "22222", 1)).To(Succeed())

		Eventually(pendingEvents, 10*time.Second, 100*time.Millisecond).Should(BeZero())
		Eventually(func() []string {
			return env.lms.ActiveLogins(sectionID)
		}, 5*time.Second, 100*time.Millisecond).Should(Equal([]string{"20000001"}))

		Expect(db.Register(ctx, "201811", "22222", 1, "DD")).To(Succeed())
		Expect(db.AddEvent(ctx, eventStudentDrop, "201811", "22222", 1)).To(Succeed())

		Eventually(pendingEvents, 10*time.Second, 100*time.Millisecond).Should(BeZero())
		Eventually(func() []string {
			return env.lms.ActiveLogins(sectionID)
		}, 5*time.Second, 100*time.Millisecond).Should(BeEmpty())
	})

	It("updates the LMS profile on a person sync", func() {
		Expect(db.Register(ctx, "201811", "22222", 1, "RE")).To(Succeed())
		Expect(db.AddEvent(ctx, eventStudentEnroll, "201811", "22222", 1)).To(Succeed())
		Eventually(pendingEvents, 10*time.Second, 100*time.Millisecond).Should(BeZero())

		_, err := db.Pool.Exec(ctx, `UPDATE sis_person SET email = $1 WHERE pidm = $2`, "admiral@example.edu", 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AddEvent(ctx, eventPersonSync, "201811", "", 1)).To(Succeed())

		Eventually(func() string {
			u, ok := env.lms.User("20000001")
			if !ok {
				return ""
			}
			return u.PrimaryEmail
		}, 10*time.Second, 100*time.Millisecond).Should(Equal("admiral@example.edu"))
	})

	It("removes a cancelled section", func() {
		Expect(db.AddEvent(ctx, eventSectionCancel, "201811", "22222", 0)).To(Succeed())

		Eventually(pendingEvents, 10*time.Second, 100*time.Millisecond).Should(BeZero())
		Eventually(func() bool {
			return env.lms.SectionExists(sectionID)
		}, 5*time.Second, 100*time.Millisecond).Should(BeFalse())

		ids, err := db.TrackedSectionIDs(ctx, "201811", "22222")
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(BeEmpty())
	})
})
