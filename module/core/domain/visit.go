package domain

import "time"

type VisitState string

const (
	VisitInitiated            VisitState = "initiated"
	VisitLocationValidated    VisitState = "location_validated"
	VisitBrandsSelected       VisitState = "brands_selected"
	VisitActivitiesInProgress VisitState = "activities_in_progress"
	VisitActivitiesCompleted  VisitState = "activities_completed"
	VisitCompleted            VisitState = "visit_completed"
	VisitCancelled            VisitState = "visit_cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s VisitState) Terminal() bool {
	return s == VisitCompleted || s == VisitCancelled
}

type CustomerType string

const (
	CustomerNew      CustomerType = "new"
	CustomerExisting CustomerType = "existing"
)

const (
	VisitTypeBoardPlacement      = "board_placement"
	VisitTypeProductDistribution = "product_distribution"
	VisitTypeFullActivation      = "full_activation"
)

type ActivityType string

const (
	ActivitySurvey               ActivityType = "survey"
	ActivityBoardPlacement       ActivityType = "board_placement"
	ActivityProductDistribution  ActivityType = "product_distribution"
	ActivityMerchandising        ActivityType = "merchandising"
	ActivityPhotoCapture         ActivityType = "photo_capture"
	ActivityCustomerRegistration ActivityType = "customer_registration"
)

type ActivityStatus string

const (
	ActivityPending    ActivityStatus = "pending"
	ActivityInProgress ActivityStatus = "in_progress"
	ActivityCompleted  ActivityStatus = "completed"
	ActivitySkipped    ActivityStatus = "skipped"
	ActivityFailed     ActivityStatus = "failed"
)

type CommissionKind string

const (
	CommissionFixed   CommissionKind = "fixed"
	CommissionPerUnit CommissionKind = "per_unit"
)

type CommissionRule struct {
	Kind   CommissionKind `json:"kind"`
	Amount float64        `json:"amount"`
}

// Requirement is a precondition an activity declares. Workflow-state
// requirements gate startActivity; device/inventory requirements are
// enforced through payload validation at completion time.
type Requirement string

const (
	ReqCustomerConsent    Requirement = "customer_consent"
	ReqCustomerPermission Requirement = "customer_permission"
	ReqLocationValidated  Requirement = "location_validated"
	ReqPhotoRequired      Requirement = "photo_required"
	ReqBoardAvailable     Requirement = "board_available"
	ReqProductsAvailable  Requirement = "products_available"
	ReqCameraAvailable    Requirement = "camera_available"
)

type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActivityTemplate describes a mandatory activity supplied by the
// caller (brand/activity catalogs are external inputs).
type ActivityTemplate struct {
	Type             ActivityType   `json:"type"`
	BrandID          string         `json:"brand_id,omitempty"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	EstimatedMinutes int            `json:"estimated_minutes"`
	Commission       CommissionRule `json:"commission"`
	Requirements     []Requirement  `json:"requirements"`
}

type SurveyResponse struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

type SurveyData struct {
	Responses []SurveyResponse `json:"responses"`
}

type BoardPlacementData struct {
	Photos          []string `json:"photos"`
	CoveragePercent float64  `json:"coverage_percent"`
	Notes           string   `json:"notes,omitempty"`
}

type ProductDistributionData struct {
	Quantity int      `json:"quantity"`
	Products []string `json:"products"`
}

type PhotoCaptureData struct {
	Photos []string `json:"photos"`
}

type RegistrationData struct {
	CustomerName string `json:"customer_name"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Address      string `json:"address,omitempty"`
}

// ActivityData is a tagged union keyed by the activity's type; exactly
// the field matching the type must be set on completion.
type ActivityData struct {
	Survey              *SurveyData              `json:"survey,omitempty"`
	BoardPlacement      *BoardPlacementData      `json:"board_placement,omitempty"`
	ProductDistribution *ProductDistributionData `json:"product_distribution,omitempty"`
	PhotoCapture        *PhotoCaptureData        `json:"photo_capture,omitempty"`
	Registration        *RegistrationData        `json:"registration,omitempty"`
}

// Activity is owned by its parent Visit: created once at initiation and
// mutated only through workflow transitions.
type Activity struct {
	ID               string         `json:"id"`
	Type             ActivityType   `json:"type"`
	BrandID          string         `json:"brand_id,omitempty"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Mandatory        bool           `json:"mandatory"`
	Status           ActivityStatus `json:"status"`
	EstimatedMinutes int            `json:"estimated_minutes"`
	Commission       CommissionRule `json:"commission"`
	Requirements     []Requirement  `json:"requirements"`
	Data             *ActivityData  `json:"data,omitempty"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
}

type ValidationFlags struct {
	LocationValidated            bool `json:"location_validated"`
	CustomerIdentified           bool `json:"customer_identified"`
	BrandsSelected               bool `json:"brands_selected"`
	MandatoryActivitiesCompleted bool `json:"mandatory_activities_completed"`
}

type Visit struct {
	VisitID         string           `json:"visit_id"`
	AgentID         string           `json:"agent_id"`
	CustomerID      string           `json:"customer_id"`
	CustomerType    CustomerType     `json:"customer_type"`
	State           VisitState       `json:"state"`
	VisitType       string           `json:"visit_type"`
	Brands          []Brand          `json:"brands"`
	AgentLocation   LocationReading  `json:"agent_location"`
	Activities      []Activity       `json:"activities"`
	CustomerConsent bool             `json:"customer_consent"`
	Validations     ValidationFlags  `json:"validations"`
	Geofence        *GeofenceResult  `json:"geofence,omitempty"`
	CompletionNotes string           `json:"completion_notes,omitempty"`
	TotalCommission float64          `json:"total_commission"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         *time.Time       `json:"end_time,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Version         int              `json:"version"`
}

// FindActivity returns the activity with the given id, or nil.
func (v *Visit) FindActivity(activityID string) *Activity {
	for i := range v.Activities {
		if v.Activities[i].ID == activityID {
			return &v.Activities[i]
		}
	}
	return nil
}

type VisitProgress struct {
	TotalActivities      int `json:"total_activities"`
	CompletedActivities  int `json:"completed_activities"`
	MandatoryActivities  int `json:"mandatory_activities"`
	CompletedMandatory   int `json:"completed_mandatory"`
	CompletionPercentage int `json:"completion_percentage"`
}

type VisitSummary struct {
	VisitID         string          `json:"visit_id"`
	AgentID         string          `json:"agent_id"`
	CustomerID      string          `json:"customer_id"`
	State           VisitState      `json:"state"`
	DurationMinutes int             `json:"duration_minutes"`
	Progress        VisitProgress   `json:"progress"`
	Commission      float64         `json:"commission"`
	Brands          []Brand         `json:"brands"`
	Validations     ValidationFlags `json:"validations"`
}
