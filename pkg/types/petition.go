package types

// 请愿状态
const (
	PetitionDraft     = "draft"
	PetitionPending   = "pending"
	PetitionPublished = "published"
	PetitionRejected  = "rejected"
)

// User 表示后端返回的用户信息
type User struct {
	ID       int    `json:"id" mapstructure:"id"`
	Username string `json:"username" mapstructure:"username"`
	Email    string `json:"email" mapstructure:"email"`
	Role     string `json:"role" mapstructure:"role"` // admin, lawyer, citizen
}

// Evidence 表示请愿附带的证据
type Evidence struct {
	ID                 int    `json:"id" mapstructure:"id"`
	Title              string `json:"title" mapstructure:"title"`
	FileType           string `json:"file_type" mapstructure:"file_type"`
	CaseTag            string `json:"case_tag" mapstructure:"case_tag"`
	VerificationStatus string `json:"verification_status" mapstructure:"verification_status"`
}

// Petition 表示 petitions/ 接口返回的请愿
type Petition struct {
	ID             int        `json:"id" mapstructure:"id"`
	Title          string     `json:"title" mapstructure:"title"`
	Description    string     `json:"description" mapstructure:"description"`
	Category       string     `json:"category" mapstructure:"category"`
	Visibility     string     `json:"visibility" mapstructure:"visibility"`
	Status         string     `json:"status" mapstructure:"status"`
	SupporterCount int        `json:"supporter_count" mapstructure:"supporter_count"`
	Creator        *User      `json:"creator" mapstructure:"creator"`
	Evidences      []Evidence `json:"evidences" mapstructure:"evidences"`
}
