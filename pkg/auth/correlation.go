package auth

import "strings"

const (
	// CorrelationHeader is the request header carrying SDK metadata.
	CorrelationHeader = "Correlation-Context"
	// SDKVersion is reported to CDP in the correlation header.
	SDKVersion = "0.1.0"
	// SDKLanguage is reported to CDP in the correlation header.
	SDKLanguage = "go"

	defaultSource = "sdk-auth"
)

// CorrelationData formats the Correlation-Context header value.
func CorrelationData(sdkVersion, source, sourceVersion string) string {
	if source == "" {
		source = defaultSource
	}
	var sb strings.Builder
	sb.WriteString("sdk_version=")
	sb.WriteString(sdkVersion)
	sb.WriteString(",sdk_language=")
	sb.WriteString(SDKLanguage)
	sb.WriteString(",source=")
	sb.WriteString(source)
	if strings.TrimSpace(sourceVersion) != "" {
		sb.WriteString(",source_version=")
		sb.WriteString(sourceVersion)
	}
	return sb.String()
}
