package integration

import (
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/stacklok/roster-sync/internal/api/v1"
	"github.com/stacklok/roster-sync/internal/status"
	"github.com/stacklok/roster-sync/test-integration/roster-sync/helpers"
)

var _ = Describe("Admin API", func() {
	var env *environment

	BeforeEach(func() {
		env = startEnvironment(helpers.ConfigOptions{})
	})

	AfterEach(func() {
		env.stop()
	})

	Context("health endpoints", func() {
		It("reports health and readiness", func() {
			resp, err := env.server.Get("/health")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Body.Close()).To(Succeed())

			resp, err = env.server.Get("/readiness")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Body.Close()).To(Succeed())
		})

		It("exposes an idle job status for enabled institutions only", func() {
			resp, err := env.server.Get("/v1/institutions/foothill/status")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var st status.JobStatus
			Expect(helpers.DecodeJSON(resp, &st)).To(Succeed())
			Expect(st.Phase).To(Equal(status.PhaseIdle))

			resp, err = env.server.Get("/v1/institutions/deanza/status")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			Expect(resp.Body.Close()).To(Succeed())
		})
	})

	Context("sections", func() {
		var courseID int64

		BeforeEach(func() {
			Expect(db.AddSection(ctx, "201811", "12345", "MATH", "F001A.", "01")).To(Succeed())
			Expect(db.AddPerson(ctx, 1, "20000001", "Ada", "Lovelace", "ada@example.edu")).To(Succeed())
			Expect(db.AddPerson(ctx, 2, "20000002", "Alan", "Turing", "alan@example.edu")).To(Succeed())
			Expect(db.Register(ctx, "201811", "12345", 1, "RE")).To(Succeed())
			Expect(db.Register(ctx, "201811", "12345", 2, "DD")).To(Succeed())

			term := env.lms.AddTerm("Fall 2018", "201811")
			courseID = env.lms.AddCourse("MATH 1A", term.ID).ID
		})

		It("creates a section and enrolls its registered students", func() {
			resp, err := env.server.Post("/v1/institutions/foothill/sections",
				v1.CreateSectionRequest{Term: "201811", CRN: "12345", CourseID: courseID})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var created v1.SectionResponse
			Expect(helpers.DecodeJSON(resp, &created)).To(Succeed())
			Expect(created.CourseID).To(Equal(courseID))

			ids, err := db.TrackedSectionIDs(ctx, "201811", "12345")
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(HaveLen(1))
			Expect(env.lms.SectionExists(ids[0])).To(BeTrue())
			Expect(env.lms.ActiveLogins(ids[0])).To(Equal([]string{"20000001"}))

			tracked, err := db.TrackedEnrollments(ctx, "201811", "12345")
			Expect(err).NotTo(HaveOccurred())
			Expect(tracked).To(Equal(1))

			By("rejecting a second section for the same CRN")
			resp, err = env.server.Post("/v1/institutions/foothill/sections",
				v1.CreateSectionRequest{Term: "201811", CRN: "12345", CourseID: courseID})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusConflict))
			Expect(resp.Body.Close()).To(Succeed())
		})

		It("deletes a tracked section", func() {
			resp, err := env.server.Post("/v1/institutions/foothill/sections",
				v1.CreateSectionRequest{Term: "201811", CRN: "12345", CourseID: courseID})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			Expect(resp.Body.Close()).To(Succeed())

			ids, err := db.TrackedSectionIDs(ctx, "201811", "12345")
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(HaveLen(1))

			resp, err = env.server.Delete("/v1/institutions/foothill/sections/201811/12345")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(resp.Body.Close()).To(Succeed())

			Expect(env.lms.SectionExists(ids[0])).To(BeFalse())
			remaining, err := db.TrackedSectionIDs(ctx, "201811", "12345")
			Expect(err).NotTo(HaveOccurred())
			Expect(remaining).To(BeEmpty())

			By("reporting an untracked section as not found")
			resp, err = env.server.Delete("/v1/institutions/foothill/sections/201811/12345")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			Expect(resp.Body.Close()).To(Succeed())
		})

		It("creates a course for a CRN and tears it down again", func() {
			resp, err := env.server.Post("/v1/institutions/foothill/courses",
				v1.CreateCourseRequest{Term: "201811", CRNs: []string{"12345"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var created v1.CourseResponse
			Expect(helpers.DecodeJSON(resp, &created)).To(Succeed())
			Expect(created.CourseCode).To(Equal("MATH 001A"))
			Expect(created.SISCourseID).To(Equal("201811:12345"))

			course, ok := env.lms.Course(created.CourseID)
			Expect(ok).To(BeTrue())
			Expect(course.EnrollmentTermID).NotTo(BeZero())

			ids, err := db.TrackedSectionIDs(ctx, "201811", "12345")
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(HaveLen(1))
			Expect(env.lms.ActiveLogins(ids[0])).To(Equal([]string{"20000001"}))

			resp, err = env.server.Delete(fmt.Sprintf("/v1/institutions/foothill/courses/%d", created.CourseID))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(resp.Body.Close()).To(Succeed())

			_, ok = env.lms.Course(created.CourseID)
			Expect(ok).To(BeFalse())
			Expect(env.lms.SectionExists(ids[0])).To(BeFalse())
			remaining, err := db.TrackedSectionIDs(ctx, "201811", "12345")
			Expect(err).NotTo(HaveOccurred())
			Expect(remaining).To(BeEmpty())
		})

		It("syncs a single student on demand", func() {
			resp, err := env.server.Post("/v1/institutions/foothill/sections",
				v1.CreateSectionRequest{Term: "201811", CRN: "12345", CourseID: courseID})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			Expect(resp.Body.Close()).To(Succeed())

			Expect(db.Register(ctx, "201811", "12345", 2, "RW")).To(Succeed())

			resp, err = env.server.Post("/v1/institutions/foothill/students/20000002/sync?term=201811", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var synced v1.SyncStudentResponse
			Expect(helpers.DecodeJSON(resp, &synced)).To(Succeed())
			Expect(synced.Operations).NotTo(BeEmpty())

			ids, err := db.TrackedSectionIDs(ctx, "201811", "12345")
			Expect(err).NotTo(HaveOccurred())
			Expect(env.lms.ActiveLogins(ids[0])).To(Equal([]string{"20000001", "20000002"}))
		})
	})
})
