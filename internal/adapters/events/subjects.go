package events

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "climarisk"

// SubjectAssessmentCompleted is <prefix>.assessment.<id>.completed.
func SubjectAssessmentCompleted(prefix, id string) string {
	return prefix + ".assessment." + id + ".completed"
}

// SubjectAssessmentFailed is <prefix>.assessment.<id>.failed.
func SubjectAssessmentFailed(prefix, id string) string {
	return prefix + ".assessment." + id + ".failed"
}
