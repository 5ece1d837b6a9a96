package constants

const (
	AppName      = "myvoice"
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "MYVOICE"
)

// Survey roles.
const (
	SurveyRolePatientFeedback = "patient-feedback"
)
