package session

import "fmt"

// Panel is the closed set of views the multiplexer can show. Switches over
// Panel always carry a default branch that rejects unknown values, so a new
// panel is a compile-visible change rather than a stray string.
type Panel string

const (
	PanelTranscript  Panel = "transcript"
	PanelTranslation Panel = "translation"
	PanelChat        Panel = "chat"
	PanelQuestions   Panel = "questions"
	PanelAnalytics   Panel = "analytics"
)

func Panels() []Panel {
	return []Panel{PanelTranscript, PanelTranslation, PanelChat, PanelQuestions, PanelAnalytics}
}

func ParsePanel(s string) (Panel, error) {
	for _, p := range Panels() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown panel %q", ErrValidation, s)
}

// Flag names one of the meeting-wide toggles.
type Flag string

const (
	FlagRecording   Flag = "recording"
	FlagMic         Flag = "mic"
	FlagCamera      Flag = "camera"
	FlagScreenShare Flag = "screen_share"
	FlagTranslation Flag = "translation"
)

func ParseFlag(s string) (Flag, error) {
	switch Flag(s) {
	case FlagRecording, FlagMic, FlagCamera, FlagScreenShare, FlagTranslation:
		return Flag(s), nil
	default:
		return "", fmt.Errorf("%w: unknown flag %q", ErrValidation, s)
	}
}

// State is the meeting-wide session state. It is owned by the Store and
// mutated only through named operations; callers always receive copies.
type State struct {
	Recording          bool   `json:"recording"`
	MicOn              bool   `json:"mic_on"`
	CameraOn           bool   `json:"camera_on"`
	ScreenSharing      bool   `json:"screen_sharing"`
	TranslationEnabled bool   `json:"translation_enabled"`
	DurationSeconds    int    `json:"duration_seconds"`
	ParticipantCount   int    `json:"participant_count"`
	QuestionsCollected int    `json:"questions_collected"`
	ActivePanel        Panel  `json:"active_panel"`
	SourceLanguage     string `json:"source_language"`
	TargetLanguage     string `json:"target_language"`
}

func initialState() State {
	return State{
		MicOn:          true,
		CameraOn:       true,
		ActivePanel:    PanelTranscript,
		SourceLanguage: "en",
		TargetLanguage: "es",
	}
}

// ProducerStatus is the per-stream health surfaced to panels. A halted
// producer shows as unavailable with the reason it reported.
type ProducerStatus struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// FormatDuration renders seconds as MM:SS, or HH:MM:SS past an hour.
func FormatDuration(seconds int) string {
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
