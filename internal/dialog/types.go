package dialog

// FileFilter restricts a file picker to the listed extensions.
type FileFilter struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// OpenDialogOptions configures an open-file picker. Properties holds flags such as openFile,
// openDirectory and multiSelections.
type OpenDialogOptions struct {
	Title                   string       `json:"title,omitempty"`
	DefaultPath             string       `json:"defaultPath,omitempty"`
	ButtonLabel             string       `json:"buttonLabel,omitempty"`
	Filters                 []FileFilter `json:"filters,omitempty"`
	Properties              []string     `json:"properties,omitempty"`
	Message                 string       `json:"message,omitempty"`
	SecurityScopedBookmarks bool         `json:"securityScopedBookmarks,omitempty"`
}

// SaveDialogOptions configures a save-file picker.
type SaveDialogOptions struct {
	Title                   string       `json:"title,omitempty"`
	DefaultPath             string       `json:"defaultPath,omitempty"`
	ButtonLabel             string       `json:"buttonLabel,omitempty"`
	Filters                 []FileFilter `json:"filters,omitempty"`
	Message                 string       `json:"message,omitempty"`
	NameFieldLabel          string       `json:"nameFieldLabel,omitempty"`
	ShowsTagField           bool         `json:"showsTagField,omitempty"`
	Properties              []string     `json:"properties,omitempty"`
	SecurityScopedBookmarks bool         `json:"securityScopedBookmarks,omitempty"`
}

// MessageBoxOptions configures a message box. Type is one of none, info, error, question or
// warning.
type MessageBoxOptions struct {
	Message             string   `json:"message"`
	Type                string   `json:"type,omitempty"`
	Buttons             []string `json:"buttons,omitempty"`
	DefaultID           *int     `json:"defaultId,omitempty"`
	Title               string   `json:"title,omitempty"`
	Detail              string   `json:"detail,omitempty"`
	CheckboxLabel       string   `json:"checkboxLabel,omitempty"`
	CheckboxChecked     bool     `json:"checkboxChecked,omitempty"`
	Icon                string   `json:"icon,omitempty"`
	CancelID            *int     `json:"cancelId,omitempty"`
	NoLink              bool     `json:"noLink,omitempty"`
	NormalizeAccessKeys bool     `json:"normalizeAccessKeys,omitempty"`
}

// OptionsRequest is the payload shape shared by every operation except the error box.
type OptionsRequest[T any] struct {
	Options T `json:"options"`
}

// ErrorBoxRequest is the payload of an error box.
type ErrorBoxRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// OpenDialogResult is the outcome of an asynchronous open-file picker.
type OpenDialogResult struct {
	Canceled  bool     `json:"canceled"`
	FilePaths []string `json:"filePaths"`
	Bookmarks []string `json:"bookmarks,omitempty"`
}

// SaveDialogResult is the outcome of an asynchronous save-file picker.
type SaveDialogResult struct {
	Canceled bool   `json:"canceled"`
	FilePath string `json:"filePath,omitempty"`
	Bookmark string `json:"bookmark,omitempty"`
}

// MessageBoxResult is the outcome of an asynchronous message box.
type MessageBoxResult struct {
	Response        int  `json:"response"`
	CheckboxChecked bool `json:"checkboxChecked"`
}

// OpenDialogSyncResult carries the chosen paths; FilePaths is absent when canceled.
type OpenDialogSyncResult struct {
	FilePaths []string `json:"filePaths,omitempty"`
}

// SaveDialogSyncResult carries the chosen path; FilePath is absent when canceled.
type SaveDialogSyncResult struct {
	FilePath string `json:"filePath,omitempty"`
}

// MessageBoxSyncResult carries the index of the clicked button.
type MessageBoxSyncResult struct {
	ClickedButtonIndex int `json:"clickedButtonIndex"`
}

// ErrorBoxResult is the empty outcome of an error box.
type ErrorBoxResult struct{}
