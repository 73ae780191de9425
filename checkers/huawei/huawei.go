// Package huawei provides Huawei Cloud content screening for template text
// and header media.
package huawei

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huaweicloud/huaweicloud-sdk-go-v3/core/auth/basic"
	moderation "github.com/huaweicloud/huaweicloud-sdk-go-v3/services/moderation/v3"
	"github.com/huaweicloud/huaweicloud-sdk-go-v3/services/moderation/v3/model"
	region "github.com/huaweicloud/huaweicloud-sdk-go-v3/services/moderation/v3/region"

	waguard "github.com/sociovia/waguard"
	"github.com/sociovia/waguard/checkers"
)

const checkerName = "huawei"

// Config holds the configuration for the Huawei checker.
type Config struct {
	checkers.CheckerConfig

	ProjectID   string
	CallbackURL string
	CallbackKey string
}

// DefaultConfig returns the default Huawei configuration.
func DefaultConfig() Config {
	return Config{
		CheckerConfig: checkers.CheckerConfig{
			Region:   "cn-north-4",
			Endpoint: "moderation.cn-north-4.myhuaweicloud.com",
			Timeout:  30 * time.Second,
		},
	}
}

// Checker implements the Huawei content checker.
type Checker struct {
	config     Config
	client     *moderation.ModerationClient
	translator checkers.Translator
}

// New creates a new Huawei checker.
func New(cfg Config) (*Checker, error) {
	c := &Checker{
		config:     cfg,
		translator: newTranslator(),
	}

	if err := c.initClient(); err != nil {
		return nil, fmt.Errorf("failed to init huawei client: %w", err)
	}

	return c, nil
}

func (c *Checker) initClient() error {
	auth := basic.NewCredentialsBuilder().
		WithAk(c.config.AccessKeyID).
		WithSk(c.config.AccessKeySecret).
		WithProjectId(c.config.ProjectID).
		Build()

	reg, err := region.SafeValueOf(c.config.Region)
	if err != nil {
		return fmt.Errorf("invalid region: %w", err)
	}

	client := moderation.NewModerationClient(
		moderation.ModerationClientBuilder().
			WithRegion(reg).
			WithCredential(auth).
			Build())

	c.client = client
	return nil
}

// Name returns the checker name.
func (c *Checker) Name() string {
	return checkerName
}

// Capabilities returns the supported capabilities.
func (c *Checker) Capabilities() []checkers.Capability {
	return []checkers.Capability{
		{
			Kind:  waguard.KindText,
			Modes: []checkers.Mode{checkers.ModeSync},
		},
		{
			Kind:  waguard.KindImage,
			Modes: []checkers.Mode{checkers.ModeSync},
		},
		{
			Kind:  waguard.KindVideo,
			Modes: []checkers.Mode{checkers.ModeAsync},
		},
	}
}

// Check submits template content for screening.
func (c *Checker) Check(ctx context.Context, req checkers.CheckRequest) (checkers.CheckResponse, error) {
	switch req.Content.Kind {
	case waguard.KindText:
		return c.checkText(ctx, req)
	case waguard.KindImage:
		return c.checkImage(ctx, req)
	case waguard.KindVideo:
		return c.checkVideo(ctx, req)
	default:
		return checkers.CheckResponse{}, waguard.ErrUnsupportedKind
	}
}

func (c *Checker) checkText(ctx context.Context, req checkers.CheckRequest) (checkers.CheckResponse, error) {
	// Template copy is closest to the comment event type.
	eventType := "comment"

	textReq := &model.RunTextModerationRequest{
		Body: &model.TextDetectionReq{
			EventType: &eventType,
			Data: &model.TextDetectionDataReq{
				Text: req.Content.Text,
			},
		},
	}

	resp, err := c.client.RunTextModeration(textReq)
	if err != nil {
		return checkers.CheckResponse{}, fmt.Errorf("text moderation failed: %w", err)
	}

	if resp.RequestId == nil {
		return checkers.CheckResponse{}, fmt.Errorf("invalid response from huawei")
	}

	result := c.parseTextResponse(resp)
	taskID := *resp.RequestId

	return checkers.CheckResponse{
		Mode:      checkers.ModeSync,
		TaskID:    taskID,
		Immediate: result,
		Raw: map[string]any{
			"requestId": taskID,
			"result":    resp.Result,
		},
	}, nil
}

func (c *Checker) parseTextResponse(resp *model.RunTextModerationResponse) *waguard.SafetyResult {
	result := &waguard.SafetyResult{
		Decision:   waguard.DecisionPass,
		Confidence: 1.0,
		Checker:    checkerName,
		CheckedAt:  time.Now(),
	}

	if resp.Result == nil {
		return result
	}

	r := resp.Result

	if r.Suggestion != nil {
		suggestion := string(*r.Suggestion)
		switch suggestion {
		case "block":
			result.Decision = waguard.DecisionBlock
		case "review":
			result.Decision = waguard.DecisionReview
		case "pass":
			result.Decision = waguard.DecisionPass
		}
	}

	if r.Label != nil {
		result.Findings = append(result.Findings, waguard.Finding{
			Code:    *r.Label,
			Checker: checkerName,
		})
	}

	if r.Details != nil {
		for _, detail := range *r.Details {
			if detail.Label != nil {
				finding := waguard.Finding{
					Code:    *detail.Label,
					Checker: checkerName,
				}
				if detail.Confidence != nil {
					conf := float64(*detail.Confidence)
					finding.Raw = map[string]any{
						"confidence": conf,
					}
					if conf > result.Confidence {
						result.Confidence = conf
					}
				}
				result.Findings = append(result.Findings, finding)
			}
		}
	}

	return result
}

func (c *Checker) checkImage(ctx context.Context, req checkers.CheckRequest) (checkers.CheckResponse, error) {
	categories := []string{"politics", "terrorism", "porn"}
	eventType := "head_image"

	imageReq := &model.CheckImageModerationRequest{
		Body: &model.ImageDetectionReq{
			EventType:  &eventType,
			Categories: &categories,
			Url:        &req.Content.URL,
		},
	}

	resp, err := c.client.CheckImageModeration(imageReq)
	if err != nil {
		return checkers.CheckResponse{}, fmt.Errorf("image moderation failed: %w", err)
	}

	if resp.RequestId == nil {
		return checkers.CheckResponse{}, fmt.Errorf("invalid response from huawei")
	}

	result := c.parseImageResponse(resp)
	taskID := *resp.RequestId

	return checkers.CheckResponse{
		Mode:      checkers.ModeSync,
		TaskID:    taskID,
		Immediate: result,
		Raw: map[string]any{
			"requestId": taskID,
			"result":    resp.Result,
		},
	}, nil
}

func (c *Checker) parseImageResponse(resp *model.CheckImageModerationResponse) *waguard.SafetyResult {
	result := &waguard.SafetyResult{
		Decision:   waguard.DecisionPass,
		Confidence: 1.0,
		Checker:    checkerName,
		CheckedAt:  time.Now(),
	}

	if resp.Result == nil {
		return result
	}

	r := resp.Result

	if r.Suggestion != nil {
		switch *r.Suggestion {
		case "block":
			result.Decision = waguard.DecisionBlock
		case "review":
			result.Decision = waguard.DecisionReview
		case "pass":
			result.Decision = waguard.DecisionPass
		}
	}

	if r.Category != nil {
		result.Findings = append(result.Findings, waguard.Finding{
			Code:    *r.Category,
			Checker: checkerName,
		})
	}

	if r.Details != nil {
		for _, detail := range *r.Details {
			if detail.Label != nil {
				result.Findings = append(result.Findings, waguard.Finding{
					Code:    *detail.Label,
					Checker: checkerName,
				})
			}
		}
	}

	return result
}

func (c *Checker) checkVideo(ctx context.Context, req checkers.CheckRequest) (checkers.CheckResponse, error) {
	imageCategories := []model.VideoCreateRequestImageCategories{
		model.GetVideoCreateRequestImageCategoriesEnum().POLITICS,
		model.GetVideoCreateRequestImageCategoriesEnum().TERRORISM,
		model.GetVideoCreateRequestImageCategoriesEnum().PORN,
	}
	eventType := model.GetVideoCreateRequestEventTypeEnum().DEFAULT

	videoReq := &model.RunCreateVideoModerationJobRequest{
		Body: &model.VideoCreateRequest{
			Data: &model.VideoCreateRequestData{
				Url: req.Content.URL,
			},
			EventType:       &eventType,
			ImageCategories: &imageCategories,
		},
	}

	if c.config.CallbackURL != "" {
		videoReq.Body.Callback = &c.config.CallbackURL
	}

	resp, err := c.client.RunCreateVideoModerationJob(videoReq)
	if err != nil {
		return checkers.CheckResponse{}, fmt.Errorf("video moderation failed: %w", err)
	}

	if resp.RequestId == nil || resp.JobId == nil {
		return checkers.CheckResponse{}, fmt.Errorf("invalid response from huawei")
	}

	return checkers.CheckResponse{
		Mode:   checkers.ModeAsync,
		TaskID: *resp.JobId,
		Raw: map[string]any{
			"requestId": *resp.RequestId,
			"jobId":     *resp.JobId,
		},
	}, nil
}

// Query queries the status of an async video task.
func (c *Checker) Query(ctx context.Context, taskID string) (checkers.QueryResponse, error) {
	req := &model.RunQueryVideoModerationJobRequest{
		JobId: taskID,
	}

	resp, err := c.client.RunQueryVideoModerationJob(req)
	if err != nil {
		return checkers.QueryResponse{}, fmt.Errorf("query video result failed: %w", err)
	}

	if resp.RequestId == nil {
		return checkers.QueryResponse{}, fmt.Errorf("invalid response from huawei")
	}

	result := &waguard.SafetyResult{
		Decision:   waguard.DecisionPass,
		Confidence: 1.0,
		Checker:    checkerName,
		CheckedAt:  time.Now(),
	}

	done := false
	if resp.Status != nil {
		switch resp.Status.Value() {
		case "succeeded":
			done = true
			if resp.Result != nil && resp.Result.Suggestion != nil {
				switch resp.Result.Suggestion.Value() {
				case "block":
					result.Decision = waguard.DecisionBlock
				case "review":
					result.Decision = waguard.DecisionReview
				}
			}
		case "failed":
			done = true
			result.Decision = waguard.DecisionError
		case "running":
			done = false
		}
	}

	return checkers.QueryResponse{
		Done:   done,
		Result: result,
		Raw: map[string]any{
			"requestId": *resp.RequestId,
			"status":    resp.Status,
		},
	}, nil
}

// VerifyCallback verifies the signature of a callback request.
func (c *Checker) VerifyCallback(ctx context.Context, headers map[string]string, body []byte) error {
	signature := headers["X-Hw-Signature"]
	if signature == "" {
		return waguard.ErrCallbackInvalid
	}

	mac := hmac.New(sha256.New, []byte(c.config.CallbackKey))
	mac.Write(body)
	expectedSig := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expectedSig)) {
		return waguard.ErrCallbackInvalid
	}

	return nil
}

// ParseCallback parses a callback request body.
func (c *Checker) ParseCallback(ctx context.Context, body []byte) (checkers.CallbackData, error) {
	var callback struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
		Result struct {
			Suggestion string `json:"suggestion"`
			Categories []struct {
				Name       string  `json:"name"`
				Confidence float64 `json:"confidence"`
			} `json:"categories"`
		} `json:"result"`
	}

	if err := json.Unmarshal(body, &callback); err != nil {
		return checkers.CallbackData{}, fmt.Errorf("failed to parse callback: %w", err)
	}

	decision := waguard.DecisionPass
	switch callback.Result.Suggestion {
	case "block":
		decision = waguard.DecisionBlock
	case "review":
		decision = waguard.DecisionReview
	}

	var findings []waguard.Finding
	var highestConf float64
	for _, cat := range callback.Result.Categories {
		findings = append(findings, waguard.Finding{
			Code:    cat.Name,
			Checker: checkerName,
		})
		if cat.Confidence > highestConf {
			highestConf = cat.Confidence
		}
	}

	return checkers.CallbackData{
		TaskID: callback.JobID,
		Done:   callback.Status == "succeeded",
		Result: &waguard.SafetyResult{
			Decision:   decision,
			Confidence: highestConf,
			Findings:   findings,
			Checker:    checkerName,
			CheckedAt:  time.Now(),
		},
		Raw: map[string]any{"raw": callback},
	}, nil
}

// Translator returns the finding translator.
func (c *Checker) Translator() checkers.Translator {
	return c.translator
}

// Huawei label mappings, based on the moderation API documentation.
var labelMappings = map[string]checkers.LabelMapping{
	"porn":        {Type: waguard.ViolationAdultContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"sexy":        {Type: waguard.ViolationAdultContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 0.9},
	"terrorism":   {Type: waguard.ViolationProhibitedContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"violence":    {Type: waguard.ViolationProhibitedContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"ban":         {Type: waguard.ViolationIllegalContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"abuse":       {Type: waguard.ViolationAbusiveContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 0.9},
	"ad":          {Type: waguard.ViolationSpamContent, Severity: waguard.SeverityInfo, Decision: waguard.DecisionReview, Confidence: 0.8},
	"qrcode":      {Type: waguard.ViolationSpamContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 0.8},
	"image_text":  {Type: waguard.ViolationProhibitedContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 0.8},
}

func newTranslator() checkers.Translator {
	return checkers.NewBaseTranslator(checkerName, labelMappings)
}
