package stub_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/realhttp-go/rhttp/stub"
)

func TestJSONPatchProducerOverlaysFields(t *testing.T) {
	producer := stub.JSONPatchProducer(201, []byte(`{"name":"widget"}`), map[string]string{"id": "42", "status": "created"})

	resp := producer(&stub.Request{}, nil)
	require.Equal(t, 201, resp.StatusCode)
	require.Equal(t, "application/json", resp.ContentType)
	require.JSONEq(t, `{"name":"widget","id":"42","status":"created"}`, string(resp.Body))
}

func TestJSONPatchFromRequestProducerEchoesCallerBody(t *testing.T) {
	producer := stub.JSONPatchFromRequestProducer(200, map[string]string{"id": "7"})

	req := &stub.Request{Body: []byte(`{"name":"gadget"}`)}
	resp := producer(req, nil)
	require.Equal(t, 200, resp.StatusCode)
	require.JSONEq(t, `{"name":"gadget","id":"7"}`, string(resp.Body))
}
