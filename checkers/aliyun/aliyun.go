package aliyun

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	green "github.com/alibabacloud-go/green-20220302/v2/client"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"

	waguard "github.com/sociovia/waguard"
	"github.com/sociovia/waguard/checkers"
)

const checkerName = "aliyun"

// Checker implements the Aliyun content checker.
type Checker struct {
	config     Config
	client     *green.Client
	translator checkers.Translator
}

// New creates a new Aliyun checker.
func New(cfg Config) (*Checker, error) {
	c := &Checker{
		config:     cfg,
		translator: newTranslator(),
	}

	if err := c.initClient(); err != nil {
		return nil, fmt.Errorf("failed to init aliyun client: %w", err)
	}

	return c, nil
}

func (c *Checker) initClient() error {
	config := &openapi.Config{
		AccessKeyId:     tea.String(c.config.AccessKeyID),
		AccessKeySecret: tea.String(c.config.AccessKeySecret),
		RegionId:        tea.String(c.config.Region),
		Endpoint:        tea.String(c.config.Endpoint),
	}

	client, err := green.NewClient(config)
	if err != nil {
		return err
	}

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
	serviceParams := map[string]interface{}{
		"content": req.Content.Text,
	}
	if req.Tpl.SubmitterID != "" {
		serviceParams["accountId"] = req.Tpl.SubmitterID
	}

	serviceParamsJSON, err := json.Marshal(serviceParams)
	if err != nil {
		return checkers.CheckResponse{}, fmt.Errorf("failed to marshal service params: %w", err)
	}

	service := c.config.TextService
	if service == "" {
		service = "chat_detection"
	}

	textReq := &green.TextModerationRequest{
		Service:           tea.String(service),
		ServiceParameters: tea.String(string(serviceParamsJSON)),
	}

	runtime := &util.RuntimeOptions{}
	resp, err := c.client.TextModerationWithOptions(textReq, runtime)
	if err != nil {
		return checkers.CheckResponse{}, fmt.Errorf("text moderation failed: %w", err)
	}

	if resp.Body == nil || resp.Body.Code == nil {
		return checkers.CheckResponse{}, fmt.Errorf("invalid response from aliyun")
	}

	if *resp.Body.Code != 200 {
		return checkers.CheckResponse{}, waguard.NewCheckerError(checkerName,
			fmt.Sprintf("%d", *resp.Body.Code), tea.StringValue(resp.Body.Message)).
			WithStatusCode(int(*resp.Body.Code))
	}

	result := c.parseTextResponse(resp.Body)
	taskID := tea.StringValue(resp.Body.RequestId)

	return checkers.CheckResponse{
		Mode:      checkers.ModeSync,
		TaskID:    taskID,
		Immediate: result,
		Raw: map[string]any{
			"requestId": taskID,
			"code":      tea.Int32Value(resp.Body.Code),
			"data":      resp.Body.Data,
		},
	}, nil
}

func (c *Checker) parseTextResponse(body *green.TextModerationResponseBody) *waguard.SafetyResult {
	result := &waguard.SafetyResult{
		Decision:   waguard.DecisionPass,
		Confidence: 1.0,
		Checker:    checkerName,
		CheckedAt:  time.Now(),
	}

	if body.Data == nil {
		return result
	}

	data := body.Data

	if data.Labels != nil && *data.Labels != "" {
		labels := *data.Labels
		result.Findings = append(result.Findings, waguard.Finding{
			Code:    labels,
			Checker: checkerName,
		})

		if labels != "" && labels != "normal" && labels != "nonLabel" {
			result.Decision = waguard.DecisionBlock
		}
	}

	// The reason payload carries the risk level as JSON.
	if data.Reason != nil && *data.Reason != "" {
		var reasonData map[string]interface{}
		if err := json.Unmarshal([]byte(*data.Reason), &reasonData); err == nil {
			if riskLevel, ok := reasonData["riskLevel"].(string); ok {
				switch riskLevel {
				case "high":
					result.Decision = waguard.DecisionBlock
					result.Confidence = 0.95
				case "medium":
					result.Decision = waguard.DecisionReview
					result.Confidence = 0.75
				case "low":
					result.Confidence = 0.5
				}
			}
		}
	}

	return result
}

func (c *Checker) checkImage(ctx context.Context, req checkers.CheckRequest) (checkers.CheckResponse, error) {
	serviceParams := map[string]interface{}{
		"imageUrl": req.Content.URL,
	}

	serviceParamsJSON, err := json.Marshal(serviceParams)
	if err != nil {
		return checkers.CheckResponse{}, fmt.Errorf("failed to marshal service params: %w", err)
	}

	imageReq := &green.ImageModerationRequest{
		Service:           tea.String("baselineCheck"),
		ServiceParameters: tea.String(string(serviceParamsJSON)),
	}

	runtime := &util.RuntimeOptions{}
	resp, err := c.client.ImageModerationWithOptions(imageReq, runtime)
	if err != nil {
		return checkers.CheckResponse{}, fmt.Errorf("image moderation failed: %w", err)
	}

	if resp.Body == nil || resp.Body.Code == nil {
		return checkers.CheckResponse{}, fmt.Errorf("invalid response from aliyun")
	}

	if *resp.Body.Code != 200 {
		return checkers.CheckResponse{}, waguard.NewCheckerError(checkerName,
			fmt.Sprintf("%d", *resp.Body.Code), tea.StringValue(resp.Body.Msg)).
			WithStatusCode(int(*resp.Body.Code))
	}

	result := c.parseImageResponse(resp.Body)
	taskID := tea.StringValue(resp.Body.RequestId)

	return checkers.CheckResponse{
		Mode:      checkers.ModeSync,
		TaskID:    taskID,
		Immediate: result,
		Raw: map[string]any{
			"requestId": taskID,
			"code":      tea.Int32Value(resp.Body.Code),
			"data":      resp.Body.Data,
		},
	}, nil
}

func (c *Checker) parseImageResponse(body *green.ImageModerationResponseBody) *waguard.SafetyResult {
	result := &waguard.SafetyResult{
		Decision:   waguard.DecisionPass,
		Confidence: 1.0,
		Checker:    checkerName,
		CheckedAt:  time.Now(),
	}

	if body.Data == nil {
		return result
	}

	data := body.Data

	if data.Result != nil {
		for _, item := range data.Result {
			if item.Label != nil && *item.Label != "" {
				label := *item.Label
				confidence := float64(0)
				if item.Confidence != nil {
					confidence = float64(*item.Confidence)
				}

				result.Findings = append(result.Findings, waguard.Finding{
					Code:    label,
					Checker: checkerName,
					Raw: map[string]any{
						"confidence": confidence,
					},
				})

				if label != "normal" && label != "nonLabel" {
					if confidence >= 90 {
						result.Decision = waguard.DecisionBlock
					} else if confidence >= 70 {
						result.Decision = waguard.DecisionReview
					}
				}

				if confidence > result.Confidence {
					result.Confidence = confidence / 100.0
				}
			}
		}
	}

	return result
}

func (c *Checker) checkVideo(ctx context.Context, req checkers.CheckRequest) (checkers.CheckResponse, error) {
	serviceParams := map[string]interface{}{
		"url": req.Content.URL,
	}
	if c.config.CallbackURL != "" {
		serviceParams["callback"] = c.config.CallbackURL
	}

	serviceParamsJSON, err := json.Marshal(serviceParams)
	if err != nil {
		return checkers.CheckResponse{}, fmt.Errorf("failed to marshal service params: %w", err)
	}

	videoReq := &green.VideoModerationRequest{
		Service:           tea.String("videoAsyncManualReview"),
		ServiceParameters: tea.String(string(serviceParamsJSON)),
	}

	runtime := &util.RuntimeOptions{}
	resp, err := c.client.VideoModerationWithOptions(videoReq, runtime)
	if err != nil {
		return checkers.CheckResponse{}, fmt.Errorf("video moderation failed: %w", err)
	}

	if resp.Body == nil || resp.Body.Code == nil {
		return checkers.CheckResponse{}, fmt.Errorf("invalid response from aliyun")
	}

	if *resp.Body.Code != 200 {
		return checkers.CheckResponse{}, waguard.NewCheckerError(checkerName,
			fmt.Sprintf("%d", *resp.Body.Code), tea.StringValue(resp.Body.Message)).
			WithStatusCode(int(*resp.Body.Code))
	}

	taskID := ""
	if resp.Body.Data != nil && resp.Body.Data.TaskId != nil {
		taskID = *resp.Body.Data.TaskId
	}

	return checkers.CheckResponse{
		Mode:   checkers.ModeAsync,
		TaskID: taskID,
		Raw: map[string]any{
			"requestId": tea.StringValue(resp.Body.RequestId),
			"code":      tea.Int32Value(resp.Body.Code),
			"taskId":    taskID,
		},
	}, nil
}

// Query queries the status of an async video task.
func (c *Checker) Query(ctx context.Context, taskID string) (checkers.QueryResponse, error) {
	req := &green.VideoModerationResultRequest{
		Service:           tea.String("videoAsyncManualReview"),
		ServiceParameters: tea.String(fmt.Sprintf(`{"taskId":%q}`, taskID)),
	}

	runtime := &util.RuntimeOptions{}
	resp, err := c.client.VideoModerationResultWithOptions(req, runtime)
	if err != nil {
		return checkers.QueryResponse{}, fmt.Errorf("query video result failed: %w", err)
	}

	if resp.Body == nil || resp.Body.Code == nil {
		return checkers.QueryResponse{}, fmt.Errorf("invalid response from aliyun")
	}

	if *resp.Body.Code != 200 {
		return checkers.QueryResponse{}, waguard.NewCheckerError(checkerName,
			fmt.Sprintf("%d", *resp.Body.Code), tea.StringValue(resp.Body.Message)).
			WithStatusCode(int(*resp.Body.Code))
	}

	result := &waguard.SafetyResult{
		Decision:   waguard.DecisionPass,
		Confidence: 1.0,
		Checker:    checkerName,
		CheckedAt:  time.Now(),
	}

	done := resp.Body.Data != nil

	return checkers.QueryResponse{
		Done:   done,
		Result: result,
		Raw: map[string]any{
			"requestId": tea.StringValue(resp.Body.RequestId),
			"code":      tea.Int32Value(resp.Body.Code),
		},
	}, nil
}

// VerifyCallback verifies the signature of a callback request.
func (c *Checker) VerifyCallback(ctx context.Context, headers map[string]string, body []byte) error {
	signature := headers["X-Acs-Signature"]
	if signature == "" {
		return waguard.ErrCallbackInvalid
	}

	mac := hmac.New(sha256.New, []byte(c.config.CallbackSeed))
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
		TaskID   string `json:"taskId"`
		Code     int    `json:"code"`
		DataID   string `json:"dataId"`
		Labels   string `json:"labels"`
		Reason   string `json:"reason"`
		RiskTips string `json:"riskTips"`
	}

	if err := json.Unmarshal(body, &callback); err != nil {
		return checkers.CallbackData{}, fmt.Errorf("failed to parse callback: %w", err)
	}

	decision := waguard.DecisionPass
	var findings []waguard.Finding

	if callback.Labels != "" && callback.Labels != "normal" && callback.Labels != "nonLabel" {
		decision = waguard.DecisionBlock
		findings = append(findings, waguard.Finding{
			Code:    callback.Labels,
			Message: callback.RiskTips,
			Checker: checkerName,
		})
	}

	return checkers.CallbackData{
		TaskID: callback.TaskID,
		Done:   true,
		Result: &waguard.SafetyResult{
			Decision:   decision,
			Confidence: 1.0,
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
