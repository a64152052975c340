package dialogflow

import (
	"BankingChatbot/internal/entity"
	"BankingChatbot/pkg/nlp"
	"context"
	"errors"
	"fmt"
	"os"

	df "cloud.google.com/go/dialogflow/apiv2"
	"cloud.google.com/go/dialogflow/apiv2/dialogflowpb"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error taxonomy for the provider boundary. Callers decide whether to
// retry; this client never retries on its own.
var (
	ErrProviderUnavailable = errors.New("nlu provider unavailable")
	ErrProviderError       = errors.New("nlu provider rejected the request")
	ErrMalformedResponse   = errors.New("nlu provider returned a malformed result")
	ErrEmptyText           = errors.New("text must not be empty")
)

type IDialogflow interface {
	DetectIntent(ctx context.Context, session entity.ConversationSession, text string) (*nlp.RecognitionResult, error)
	Close() error
}

type dialogflowClient struct {
	projectID       string
	defaultLanguage string
	sessions        *df.SessionsClient
	log             *logrus.Logger
}

func NewDialogflowClient(log *logrus.Logger) (IDialogflow, error) {
	projectID := os.Getenv("DIALOGFLOW_PROJECT_ID")
	if projectID == "" {
		return nil, errors.New("dialogflow project ID is required")
	}

	defaultLanguage := os.Getenv("DIALOGFLOW_LANGUAGE_CODE")
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}

	var opts []option.ClientOption
	if credentials := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credentials != "" {
		opts = append(opts, option.WithCredentialsFile(credentials))
	}

	sessions, err := df.NewSessionsClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create dialogflow sessions client: %w", err)
	}

	return &dialogflowClient{
		projectID:       projectID,
		defaultLanguage: defaultLanguage,
		sessions:        sessions,
		log:             log,
	}, nil
}

// DetectIntent sends one conversational turn to the hosted agent. Each
// call is a fresh turn; conversational context lives inside the
// provider's session state, keyed by the session path.
func (c *dialogflowClient) DetectIntent(
	ctx context.Context,
	session entity.ConversationSession,
	text string,
) (*nlp.RecognitionResult, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	languageCode := session.LanguageCode
	if languageCode == "" {
		languageCode = c.defaultLanguage
	}

	req := &dialogflowpb.DetectIntentRequest{
		Session: fmt.Sprintf("projects/%s/agent/sessions/%s", c.projectID, session.SessionID),
		QueryInput: &dialogflowpb.QueryInput{
			Input: &dialogflowpb.QueryInput_Text{
				Text: &dialogflowpb.TextInput{
					Text:         text,
					LanguageCode: languageCode,
				},
			},
		},
	}

	resp, err := c.sessions.DetectIntent(ctx, req)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"session_id": session.SessionID,
			"error":      err.Error(),
		}).Error("Dialogflow detect intent call failed")
		return nil, classifyRPCError(err)
	}

	queryResult := resp.GetQueryResult()
	if queryResult == nil || queryResult.GetIntent() == nil {
		return nil, fmt.Errorf("%w: query result has no intent", ErrMalformedResponse)
	}

	intentName := queryResult.GetIntent().GetDisplayName()
	if intentName == "" {
		return nil, fmt.Errorf("%w: intent has no display name", ErrMalformedResponse)
	}

	result := &nlp.RecognitionResult{
		Intent:          intentName,
		Confidence:      float64(queryResult.GetIntentDetectionConfidence()),
		Parameters:      nlp.NormalizeParameters(queryResult.GetParameters()),
		FulfillmentText: queryResult.GetFulfillmentText(),
	}

	c.log.WithFields(logrus.Fields{
		"session_id": session.SessionID,
		"intent":     result.Intent,
		"confidence": result.Confidence,
	}).Debug("Dialogflow intent detected")

	return result, nil
}

func (c *dialogflowClient) Close() error {
	if c.sessions != nil {
		return c.sessions.Close()
	}
	return nil
}

// classifyRPCError folds gRPC failures into the provider error taxonomy.
// Transport, timeout, and credential failures are transient from the
// caller's point of view; everything else is a well-formed rejection.
func classifyRPCError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled,
		codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrProviderUnavailable, st.Message())
	default:
		return fmt.Errorf("%w: %s", ErrProviderError, st.Message())
	}
}
