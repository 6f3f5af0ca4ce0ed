package model

// Hook is a webhook registration on a repository. Config mirrors GitHub's
// free-form config object (url, content_type, secret, insecure_ssl).
type Hook struct {
	ID     int64
	Name   string
	Config map[string]any
	Events []string
	Active bool
}
