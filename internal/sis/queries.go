package sis

const (
	getPendingEventsSQL = `
SELECT id, event_type, term, crn, COALESCE(pidm, 0) AS pidm
FROM sis_event
ORDER BY id
LIMIT $1`

	deleteEventSQL = `DELETE FROM sis_event WHERE id = $1`

	personColumns = `pidm, campus_id, first_name, last_name, COALESCE(email, '') AS email`

	getPersonByIDSQL = `SELECT ` + personColumns + ` FROM sis_person WHERE pidm = $1`

	getPersonByExternalIDSQL = `SELECT ` + personColumns + ` FROM sis_person WHERE campus_id = $1`

	sectionColumns = `term, crn, subject_code, course_number, section_number, title, COALESCE(parent_crn, '') AS parent_crn`

	getSectionSQL = `SELECT ` + sectionColumns + ` FROM sis_section WHERE term = $1 AND crn = $2`

	getCourseSQL = `
SELECT p.term, p.crn, p.subject_code, p.course_number, p.section_number, p.title, COALESCE(p.parent_crn, '') AS parent_crn
FROM sis_section s
JOIN sis_section p ON p.term = s.term AND p.crn = COALESCE(s.parent_crn, s.crn)
WHERE s.term = $1 AND s.crn = $2`

	enrollmentColumns = `r.term, r.crn, r.pidm, p.campus_id, r.registration_status, r.status_date`

	getSectionRosterSQL = `
SELECT ` + enrollmentColumns + `
FROM sis_registration r
JOIN sis_person p ON p.pidm = r.pidm
WHERE r.term = $1 AND r.crn = $2 AND r.registration_status LIKE 'R%'
ORDER BY r.pidm`

	getAllEnrollmentsByTermSQL = `
SELECT ` + enrollmentColumns + `
FROM sis_registration r
JOIN sis_person p ON p.pidm = r.pidm
WHERE r.term = $1
  AND r.registration_status LIKE 'R%'
ORDER BY r.crn, r.pidm`

	getEnrollmentHistorySQL = `
SELECT ` + enrollmentColumns + `
FROM sis_registration r
JOIN sis_person p ON p.pidm = r.pidm
WHERE r.term = $1 AND r.pidm = $2
ORDER BY r.crn`

	getCurrentTermsSQL = `
(SELECT term FROM sis_term
 WHERE institution = $1 AND start_date <= CURRENT_DATE
 ORDER BY start_date DESC LIMIT 1)
UNION ALL
(SELECT term FROM sis_term
 WHERE institution = $1 AND start_date > CURRENT_DATE
 ORDER BY start_date ASC LIMIT 1)`

	getTrackedSectionsSQL = `
SELECT id, term, crn, course_id, section_id
FROM lms_tracked_section
WHERE term = $1 AND crn = $2
ORDER BY id`

	trackedEnrollmentColumns = `id, term, crn, pidm, user_id, enrollment_type, enrollment_id, course_id, section_id, url`

	getTrackedEnrollmentSQL = `
SELECT ` + trackedEnrollmentColumns + `
FROM lms_tracked_enrollment
WHERE term = $1 AND crn = $2 AND pidm = $3`

	getTrackedSectionsByCourseSQL = `
SELECT id, term, crn, course_id, section_id
FROM lms_tracked_section
WHERE course_id = $1
ORDER BY id`

	trackSectionSQL = `
INSERT INTO lms_tracked_section (term, crn, course_id, section_id)
VALUES ($1, $2, $3, $4)`

	untrackSectionSQL = `DELETE FROM lms_tracked_section WHERE section_id = $1`

	trackEnrollmentSQL = `
INSERT INTO lms_tracked_enrollment
  (term, crn, pidm, user_id, enrollment_type, enrollment_id, course_id, section_id, url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	untrackEnrollmentSQL = `DELETE FROM lms_tracked_enrollment WHERE enrollment_id = $1`

	untrackSectionEnrollmentsSQL = `DELETE FROM lms_tracked_enrollment WHERE term = $1 AND crn = $2`
)
