package roster

import (
	"regexp"
	"strings"

	"github.com/stacklok/roster-sync/internal/sis"
)

var subjectNoise = regexp.MustCompile(`[ /.]`)

// SanitizeSubjectCode strips spaces, slashes and dots from a subject code
func SanitizeSubjectCode(subject string) string {
	return subjectNoise.ReplaceAllString(subject, "")
}

// SanitizeCourseNumber drops the campus letter and the first dot from a course number
func SanitizeCourseNumber(course string) string {
	if i := strings.IndexAny(course, "DF"); i >= 0 {
		course = course[:i] + course[i+1:]
	}
	return strings.Replace(course, ".", "", 1)
}

// SectionName is the display name of the LMS section mirroring s
func SectionName(s *sis.Section) string {
	return SanitizeSubjectCode(s.SubjectCode) + " " + SanitizeCourseNumber(s.CourseNumber) + "." + s.SectionNumber
}

// CourseCode is the short code of the LMS course mirroring the parent section s
func CourseCode(s *sis.Section) string {
	return SanitizeSubjectCode(s.SubjectCode) + " " + SanitizeCourseNumber(s.CourseNumber)
}

// CourseName is the display name of the LMS course mirroring the parent section s
func CourseName(s *sis.Section) string {
	if s.Title == "" {
		return CourseCode(s)
	}
	return CourseCode(s) + ": " + s.Title
}
