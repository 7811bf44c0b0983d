package api

import "time"

// Paper processing statuses reported by the backend.
const (
	StatusUploading = "uploading"
	StatusParsing   = "parsing"
	StatusIndexing  = "indexing"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// TokenResponse is the credential bundle issued at login.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// User describes the authenticated account.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// PaperSummary is the list-view projection of a paper.
type PaperSummary struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Library is one page of the paper list.
type Library struct {
	Total int            `json:"total"`
	Items []PaperSummary `json:"items"`
}

// ListOptions filter and paginate the library listing. Zero values are
// omitted from the query string.
type ListOptions struct {
	Page     int
	PageSize int
	Search   string
	Category string
	Status   string
}

// UploadReceipt acknowledges an accepted upload; parsing continues in the
// background and is tracked via ProcessingStatus.
type UploadReceipt struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// PaperDetail is the full paper record.
type PaperDetail struct {
	ID                string    `json:"id"`
	Filename          string    `json:"filename"`
	Title             string    `json:"title"`
	Category          string    `json:"category"`
	Status            string    `json:"status"`
	MarkdownContent   string    `json:"markdown_content"`
	TranslatedContent string    `json:"translated_content"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PaperContent is the parsed markdown body of a completed paper.
type PaperContent struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	Translated string `json:"translated"`
}

// ProcessingStatus is the parse-pipeline progress for one paper.
type ProcessingStatus struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusMessage is the generic mutation acknowledgement used by delete-style
// endpoints.
type StatusMessage struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TagSuggestion is one model-proposed tag with its rationale.
type TagSuggestion struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Classification is the result of triggering re-analysis of a paper's tags.
type Classification struct {
	PaperID       string          `json:"paper_id"`
	SuggestedTags []TagSuggestion `json:"suggested_tags"`
}

// PaperTags is the tag state of one paper.
type PaperTags struct {
	PaperID       string   `json:"paper_id"`
	Tags          []string `json:"tags"`
	SuggestedTags []string `json:"suggested_tags"`
	TagsConfirmed bool     `json:"tags_confirmed"`
}

// TagStat is one library-wide tag with its usage count.
type TagStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TextLocation anchors an extracted item to its position in the source.
type TextLocation struct {
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	TextSnippet string `json:"text_snippet"`
}

// MethodItem is one research method extracted by the analysis pipeline.
type MethodItem struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Location    *TextLocation `json:"location"`
}

// DatasetItem is one dataset reference extracted by the analysis pipeline.
type DatasetItem struct {
	Name        string        `json:"name"`
	URL         string        `json:"url"`
	Description string        `json:"description"`
	Usage       string        `json:"usage"`
	Location    *TextLocation `json:"location"`
}

// CodeRefItem is one code-repository reference extracted by the analysis
// pipeline.
type CodeRefItem struct {
	RepoURL     string        `json:"repo_url"`
	Description string        `json:"description"`
	Location    *TextLocation `json:"location"`
}

// StructureSection is one heading in the recovered document outline.
type StructureSection struct {
	Title     string `json:"title"`
	Level     int    `json:"level"`
	StartLine int    `json:"start_line"`
}

// StructureInfo is the recovered document outline.
type StructureInfo struct {
	Sections []StructureSection `json:"sections"`
}

// AnalysisStart acknowledges a triggered analysis run.
type AnalysisStart struct {
	PaperID string `json:"paper_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// AnalysisResult is the aggregate output of the analysis pipeline.
type AnalysisResult struct {
	PaperID      string         `json:"paper_id"`
	Status       string         `json:"status"`
	Summary      string         `json:"summary"`
	Methods      []MethodItem   `json:"methods"`
	Datasets     []DatasetItem  `json:"datasets"`
	CodeRefs     []CodeRefItem  `json:"code_refs"`
	Structure    *StructureInfo `json:"structure"`
	ErrorMessage string         `json:"error_message"`
}

// Workbench zones.
const (
	ZoneMethods  = "methods"
	ZoneDatasets = "datasets"
	ZoneNotes    = "notes"
)

// WorkbenchItem is one curated artifact (method, dataset, code ref, or note).
type WorkbenchItem struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	SourcePaperID string         `json:"source_paper_id"`
	Zone          string         `json:"zone"`
	CreatedAt     string         `json:"created_at"`
	Data          map[string]any `json:"data"`
}

// Workbench groups items by zone.
type Workbench struct {
	Methods  []WorkbenchItem `json:"methods"`
	Datasets []WorkbenchItem `json:"datasets"`
	Notes    []WorkbenchItem `json:"notes"`
}

// WorkbenchStats summarizes the workbench contents.
type WorkbenchStats struct {
	TotalItems    int `json:"total_items"`
	MethodsCount  int `json:"methods_count"`
	DatasetsCount int `json:"datasets_count"`
	NotesCount    int `json:"notes_count"`
	PapersCount   int `json:"papers_count"`
}

// AddItemRequest creates a workbench item.
type AddItemRequest struct {
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	SourcePaperID string         `json:"source_paper_id,omitempty"`
	Zone          string         `json:"zone"`
	Data          map[string]any `json:"data,omitempty"`
}

// UpdateItemRequest patches a workbench item; empty fields are left as is.
type UpdateItemRequest struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Zone        string         `json:"zone,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// AnalyzeTextRequest asks the backend to distill a selected fragment into a
// workbench artifact.
type AnalyzeTextRequest struct {
	Text       string `json:"text"`
	PaperID    string `json:"paper_id"`
	PaperTitle string `json:"paper_title"`
	Location   string `json:"location,omitempty"`
}

// MethodAnalysis is the outcome of a method distillation.
type MethodAnalysis struct {
	Success  bool           `json:"success"`
	ItemID   string         `json:"item_id"`
	Analysis map[string]any `json:"analysis"`
	Error    string         `json:"error"`
}

// AssetAnalysis is the outcome of an asset scan.
type AssetAnalysis struct {
	Success     bool           `json:"success"`
	ItemIDs     []string       `json:"item_ids"`
	Analysis    map[string]any `json:"analysis"`
	AssetsCount int            `json:"assets_count"`
	Error       string         `json:"error"`
}

// CreateNoteRequest stores a selection as a workbench note.
type CreateNoteRequest struct {
	Text        string `json:"text"`
	PaperID     string `json:"paper_id"`
	PaperTitle  string `json:"paper_title"`
	Location    string `json:"location,omitempty"`
	IsTitleNote bool   `json:"is_title_note,omitempty"`
	Reflection  string `json:"reflection,omitempty"`
}

// NoteReceipt acknowledges a stored note.
type NoteReceipt struct {
	Success bool           `json:"success"`
	ItemID  string         `json:"item_id"`
	Item    *WorkbenchItem `json:"item"`
	Error   string         `json:"error"`
}

// Citation export formats.
const (
	FormatBibTeX = "bibtex"
	FormatRIS    = "ris"
	FormatPlain  = "plain"
)

// CitationExport is a rendered citation file returned by the backend.
type CitationExport struct {
	Filename string
	Content  []byte
}
