// Package tencent provides Tencent Cloud content screening for template text
// and header media. Video headers run asynchronously via the vm service.
package tencent

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	ims "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/ims/v20201229"
	tms "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/tms/v20201229"
	vm "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/vm/v20201229"

	waguard "github.com/sociovia/waguard"
	"github.com/sociovia/waguard/checkers"
)

const checkerName = "tencent"

// Config holds the configuration for the Tencent checker.
type Config struct {
	checkers.CheckerConfig

	AppID       string
	CallbackURL string
	CallbackKey string
}

// DefaultConfig returns the default Tencent configuration.
func DefaultConfig() Config {
	return Config{
		CheckerConfig: checkers.CheckerConfig{
			Region:   "ap-guangzhou",
			Endpoint: "tms.tencentcloudapi.com",
			Timeout:  30 * time.Second,
		},
	}
}

// Checker implements the Tencent content checker.
type Checker struct {
	config     Config
	tmsClient  *tms.Client
	imsClient  *ims.Client
	vmClient   *vm.Client
	translator checkers.Translator
	credential *common.Credential
}

// New creates a new Tencent checker.
func New(cfg Config) (*Checker, error) {
	c := &Checker{
		config:     cfg,
		translator: newTranslator(),
	}

	if err := c.initClients(); err != nil {
		return nil, fmt.Errorf("failed to init tencent clients: %w", err)
	}

	return c, nil
}

func (c *Checker) initClients() error {
	c.credential = common.NewCredential(c.config.AccessKeyID, c.config.AccessKeySecret)

	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "tms.tencentcloudapi.com"

	tmsClient, err := tms.NewClient(c.credential, c.config.Region, cpf)
	if err != nil {
		return fmt.Errorf("failed to create tms client: %w", err)
	}
	c.tmsClient = tmsClient

	cpf.HttpProfile.Endpoint = "ims.tencentcloudapi.com"
	imsClient, err := ims.NewClient(c.credential, c.config.Region, cpf)
	if err != nil {
		return fmt.Errorf("failed to create ims client: %w", err)
	}
	c.imsClient = imsClient

	cpf.HttpProfile.Endpoint = "vm.tencentcloudapi.com"
	vmClient, err := vm.NewClient(c.credential, c.config.Region, cpf)
	if err != nil {
		return fmt.Errorf("failed to create vm client: %w", err)
	}
	c.vmClient = vmClient

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
	textReq := tms.NewTextModerationRequest()
	content := base64.StdEncoding.EncodeToString([]byte(req.Content.Text))
	textReq.Content = &content

	if req.Tpl.SubmitterID != "" {
		textReq.User = &tms.User{
			UserId: &req.Tpl.SubmitterID,
		}
	}

	resp, err := c.tmsClient.TextModeration(textReq)
	if err != nil {
		return checkers.CheckResponse{}, fmt.Errorf("text moderation failed: %w", err)
	}

	result := c.parseTextResponse(resp)
	taskID := ""
	if resp.Response != nil && resp.Response.RequestId != nil {
		taskID = *resp.Response.RequestId
	}

	return checkers.CheckResponse{
		Mode:      checkers.ModeSync,
		TaskID:    taskID,
		Immediate: result,
		Raw: map[string]any{
			"requestId": taskID,
			"response":  resp.Response,
		},
	}, nil
}

func (c *Checker) parseTextResponse(resp *tms.TextModerationResponse) *waguard.SafetyResult {
	result := &waguard.SafetyResult{
		Decision:   waguard.DecisionPass,
		Confidence: 1.0,
		Checker:    checkerName,
		CheckedAt:  time.Now(),
	}

	if resp.Response == nil {
		return result
	}

	r := resp.Response

	if r.Suggestion != nil {
		switch *r.Suggestion {
		case "Block":
			result.Decision = waguard.DecisionBlock
		case "Review":
			result.Decision = waguard.DecisionReview
		case "Pass":
			result.Decision = waguard.DecisionPass
		}
	}

	if r.Label != nil {
		result.Findings = append(result.Findings, waguard.Finding{
			Code:    *r.Label,
			Checker: checkerName,
		})
	}

	if r.DetailResults != nil {
		for _, detail := range r.DetailResults {
			if detail.Label != nil {
				finding := waguard.Finding{
					Code:    *detail.Label,
					Checker: checkerName,
				}
				if detail.Score != nil {
					score := float64(*detail.Score) / 100.0
					finding.Raw = map[string]any{
						"score": score,
					}
					if score > result.Confidence {
						result.Confidence = score
					}
				}
				result.Findings = append(result.Findings, finding)
			}
		}
	}

	return result
}

func (c *Checker) checkImage(ctx context.Context, req checkers.CheckRequest) (checkers.CheckResponse, error) {
	imageReq := ims.NewImageModerationRequest()
	imageReq.FileUrl = &req.Content.URL

	if req.Tpl.SubmitterID != "" {
		imageReq.User = &ims.User{
			UserId: &req.Tpl.SubmitterID,
		}
	}

	resp, err := c.imsClient.ImageModeration(imageReq)
	if err != nil {
		return checkers.CheckResponse{}, fmt.Errorf("image moderation failed: %w", err)
	}

	result := c.parseImageResponse(resp)
	taskID := ""
	if resp.Response != nil && resp.Response.RequestId != nil {
		taskID = *resp.Response.RequestId
	}

	return checkers.CheckResponse{
		Mode:      checkers.ModeSync,
		TaskID:    taskID,
		Immediate: result,
		Raw: map[string]any{
			"requestId": taskID,
			"response":  resp.Response,
		},
	}, nil
}

func (c *Checker) parseImageResponse(resp *ims.ImageModerationResponse) *waguard.SafetyResult {
	result := &waguard.SafetyResult{
		Decision:   waguard.DecisionPass,
		Confidence: 1.0,
		Checker:    checkerName,
		CheckedAt:  time.Now(),
	}

	if resp.Response == nil {
		return result
	}

	r := resp.Response

	if r.Suggestion != nil {
		switch *r.Suggestion {
		case "Block":
			result.Decision = waguard.DecisionBlock
		case "Review":
			result.Decision = waguard.DecisionReview
		case "Pass":
			result.Decision = waguard.DecisionPass
		}
	}

	if r.Label != nil {
		result.Findings = append(result.Findings, waguard.Finding{
			Code:    *r.Label,
			Checker: checkerName,
		})
	}

	if r.SubLabel != nil {
		result.Findings = append(result.Findings, waguard.Finding{
			Code:    *r.SubLabel,
			Checker: checkerName,
		})
	}

	if r.Score != nil {
		result.Confidence = float64(*r.Score) / 100.0
	}

	return result
}

func (c *Checker) checkVideo(ctx context.Context, req checkers.CheckRequest) (checkers.CheckResponse, error) {
	videoReq := vm.NewCreateVideoModerationTaskRequest()
	taskType := "VIDEO"
	videoReq.Type = &taskType

	mediaType := "URL"
	videoReq.Tasks = []*vm.TaskInput{
		{
			Input: &vm.StorageInfo{
				Type: &mediaType,
				Url:  &req.Content.URL,
			},
		},
	}

	if c.config.CallbackURL != "" {
		videoReq.CallbackUrl = &c.config.CallbackURL
	}

	resp, err := c.vmClient.CreateVideoModerationTask(videoReq)
	if err != nil {
		return checkers.CheckResponse{}, fmt.Errorf("video moderation failed: %w", err)
	}

	taskID := ""
	if resp.Response != nil && resp.Response.Results != nil && len(resp.Response.Results) > 0 {
		if resp.Response.Results[0].TaskId != nil {
			taskID = *resp.Response.Results[0].TaskId
		}
	}

	return checkers.CheckResponse{
		Mode:   checkers.ModeAsync,
		TaskID: taskID,
		Raw: map[string]any{
			"requestId": taskID,
			"response":  resp.Response,
		},
	}, nil
}

// Query queries the status of an async video task.
func (c *Checker) Query(ctx context.Context, taskID string) (checkers.QueryResponse, error) {
	req := vm.NewDescribeTaskDetailRequest()
	req.TaskId = &taskID

	resp, err := c.vmClient.DescribeTaskDetail(req)
	if err != nil {
		return checkers.QueryResponse{}, fmt.Errorf("query video result failed: %w", err)
	}

	result := &waguard.SafetyResult{
		Decision:   waguard.DecisionPass,
		Confidence: 1.0,
		Checker:    checkerName,
		CheckedAt:  time.Now(),
	}

	done := false
	if resp.Response != nil {
		if resp.Response.Status != nil {
			switch *resp.Response.Status {
			case "FINISH":
				done = true
			case "RUNNING":
				done = false
			case "ERROR":
				done = true
				result.Decision = waguard.DecisionError
			}
		}

		if done && resp.Response.Suggestion != nil {
			switch *resp.Response.Suggestion {
			case "Block":
				result.Decision = waguard.DecisionBlock
			case "Review":
				result.Decision = waguard.DecisionReview
			}
		}

		if resp.Response.Labels != nil {
			for _, label := range resp.Response.Labels {
				if label.Label != nil {
					result.Findings = append(result.Findings, waguard.Finding{
						Code:    *label.Label,
						Checker: checkerName,
					})
				}
			}
		}
	}

	return checkers.QueryResponse{
		Done:   done,
		Result: result,
		Raw: map[string]any{
			"response": resp.Response,
		},
	}, nil
}

// VerifyCallback verifies the signature of a callback request.
func (c *Checker) VerifyCallback(ctx context.Context, headers map[string]string, body []byte) error {
	signature := headers["X-TC-Signature"]
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
		TaskID     string `json:"TaskId"`
		Status     string `json:"Status"`
		Suggestion string `json:"Suggestion"`
		Labels     []struct {
			Label string  `json:"Label"`
			Score float64 `json:"Score"`
		} `json:"Labels"`
	}

	if err := json.Unmarshal(body, &callback); err != nil {
		return checkers.CallbackData{}, fmt.Errorf("failed to parse callback: %w", err)
	}

	decision := waguard.DecisionPass
	switch callback.Suggestion {
	case "Block":
		decision = waguard.DecisionBlock
	case "Review":
		decision = waguard.DecisionReview
	}

	var findings []waguard.Finding
	var highestConf float64
	for _, label := range callback.Labels {
		findings = append(findings, waguard.Finding{
			Code:    label.Label,
			Checker: checkerName,
		})
		if label.Score > highestConf {
			highestConf = label.Score
		}
	}

	return checkers.CallbackData{
		TaskID: callback.TaskID,
		Done:   callback.Status == "FINISH",
		Result: &waguard.SafetyResult{
			Decision:   decision,
			Confidence: highestConf / 100.0,
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

// Tencent label mappings.
var labelMappings = map[string]checkers.LabelMapping{
	"Porn":     {Type: waguard.ViolationAdultContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"Sexy":     {Type: waguard.ViolationAdultContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 0.9},
	"Sexual":   {Type: waguard.ViolationAdultContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"Terror":   {Type: waguard.ViolationProhibitedContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"Violence": {Type: waguard.ViolationProhibitedContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"Abuse":    {Type: waguard.ViolationAbusiveContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 0.9},
	"Ad":       {Type: waguard.ViolationSpamContent, Severity: waguard.SeverityInfo, Decision: waguard.DecisionReview, Confidence: 0.8},
	"Spam":     {Type: waguard.ViolationSpamContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 0.8},
	"Illegal":  {Type: waguard.ViolationIllegalContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"Fraud":    {Type: waguard.ViolationFraudContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
}

func newTranslator() checkers.Translator {
	return checkers.NewBaseTranslator(checkerName, labelMappings)
}
