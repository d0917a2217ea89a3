package openai

// VideoJob is a video generation job as reported by a backend.
// Status is the backend's own vocabulary; callers normalize it.
type VideoJob struct {
	ID     string
	Status string
	URL    string // Set once the backend reports the video ready
	Error  string // Backend failure message, if any
}

// videoRequest is the body for POST /video/generations.
type videoRequest struct {
	Model           string `json:"model,omitempty"`
	Prompt          string `json:"prompt"`
	DurationSeconds int    `json:"duration_seconds"`
	Size            string `json:"size"`
	Format          string `json:"format"`
}

// videoResponse is the native job representation.
type videoResponse struct {
	ID     string     `json:"id"`
	Status string     `json:"status"`
	Output *urlObject `json:"output,omitempty"`
	Error  *apiError  `json:"error,omitempty"`
}

// azureJobResponse is the Azure job representation.
type azureJobResponse struct {
	ID     string     `json:"id"`
	Status string     `json:"status"`
	Result *urlObject `json:"result,omitempty"`
	Error  *apiError  `json:"error,omitempty"`
}

// imageRequest is the body for POST /images/generations.
type imageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
}

// imageResponse is the image generation result.
type imageResponse struct {
	Data []urlObject `json:"data"`
}

type urlObject struct {
	URL string `json:"url"`
}

type apiError struct {
	Message string `json:"message"`
}

// errorResponse is the error envelope shared by all endpoints.
type errorResponse struct {
	Error *apiError `json:"error"`
}

func (u *urlObject) url() string {
	if u == nil {
		return ""
	}
	return u.URL
}

func (e *apiError) message() string {
	if e == nil {
		return ""
	}
	return e.Message
}
