package utils

// LocalStage is the stage that serves URLs without a prefix.
const LocalStage = "local"

// StageURL namespaces url under the deployment stage. The local stage is left as is.
func StageURL(stage, url string) string {
	if stage == LocalStage {
		return url
	}
	return "/" + stage + url
}
