package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a simple fake implementing ssmAPI for tests.
type fakeAPI struct {
	getOut *ssm.GetParameterOutput
	getErr error
}

func (f *fakeAPI) GetParameter(_ context.Context, _ *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return f.getOut, f.getErr
}

func strPtr(s string) *string { return &s }

func paramOut(value string) *ssm.GetParameterOutput {
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name: strPtr("p"), Value: strPtr(value),
	}}
}

func TestGetParameter_HappyPath(t *testing.T) {
	client, err := New(&fakeAPI{getOut: paramOut("sk-raw")})
	require.NoError(t, err)
	v, err := client.GetParameter(context.Background(), "p")
	require.NoError(t, err)
	require.Equal(t, "sk-raw", v)
}

func TestGetParameter_MissingValue(t *testing.T) {
	client, err := New(&fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: strPtr("p")}}})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing value")
}

func TestGetParameter_APIError(t *testing.T) {
	client, err := New(&fakeAPI{getErr: errors.New("boom")})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "boom")
}

func TestGetParameter_EmptyName(t *testing.T) {
	client, err := New(&fakeAPI{})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "  ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

// ---------------------------------------------------------------------------
// ResolveAPIKey
// ---------------------------------------------------------------------------

type fakeGetter struct {
	val      string
	err      error
	lastName string
}

func (f *fakeGetter) GetParameter(_ context.Context, name string) (string, error) {
	f.lastName = name
	return f.val, f.err
}

func TestResolveAPIKey_RawValue(t *testing.T) {
	g := &fakeGetter{val: "sk-raw-key"}
	key, err := ResolveAPIKey(context.Background(), g, "/recipe-genie/")
	require.NoError(t, err)
	require.Equal(t, "sk-raw-key", key)
	require.Equal(t, "/recipe-genie/openai-api-key", g.lastName)
}

func TestResolveAPIKey_JSONValue(t *testing.T) {
	g := &fakeGetter{val: `{"token":"sk-from-json"}`}
	key, err := ResolveAPIKey(context.Background(), g, "/recipe-genie")
	require.NoError(t, err)
	require.Equal(t, "sk-from-json", key)
}

func TestResolveAPIKey_JSONMissingToken(t *testing.T) {
	g := &fakeGetter{val: `{"other":"value"}`}
	_, err := ResolveAPIKey(context.Background(), g, "/recipe-genie")
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty")
}

func TestResolveAPIKey_MalformedJSON(t *testing.T) {
	g := &fakeGetter{val: `{"broken`}
	_, err := ResolveAPIKey(context.Background(), g, "/recipe-genie")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unmarshal")
}

func TestResolveAPIKey_GetterError(t *testing.T) {
	g := &fakeGetter{err: errors.New("ssm unavailable")}
	_, err := ResolveAPIKey(context.Background(), g, "/recipe-genie")
	require.ErrorContains(t, err, "ssm unavailable")
}

func TestResolveAPIKey_EmptyPrefix(t *testing.T) {
	_, err := ResolveAPIKey(context.Background(), &fakeGetter{val: "sk"}, " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "prefix")
}

func TestResolveAPIKey_NilGetter(t *testing.T) {
	_, err := ResolveAPIKey(context.Background(), nil, "/recipe-genie")
	require.Error(t, err)
	require.Contains(t, err.Error(), "nil")
}
