// Package rhttpaws adapts AWS SigV4 request signing into the alt-request
// validator's silent-reauthorization hook (spec.md §4.5's "typical use:
// set an authorization header"), using aws-sdk-go-v2's credential chain
// and v4 signer.
//
// Grounded on the teacher's internal/backendauth dispatch-by-config-field
// style (one handler type per auth scheme, selected by a config union).
package rhttpaws

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsv4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Signer holds the resolved AWS credentials and target service/region used
// to SigV4-sign outgoing requests.
type Signer struct {
	creds   aws.CredentialsProvider
	signer  *awsv4.Signer
	Service string
	Region  string
}

// NewSigner loads the default AWS credential chain (env vars, shared
// config, EC2/ECS instance role, SSO) for service/region.
func NewSigner(ctx context.Context, service, region string) (*Signer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &Signer{creds: cfg.Credentials, signer: awsv4.NewSigner(), Service: service, Region: region}, nil
}

// NewSignerWithStaticCredentials builds a Signer from explicit access-key
// credentials instead of the default provider chain, for deployments that
// inject them directly (e.g. from a secret store) rather than via the
// environment or an instance role.
func NewSignerWithStaticCredentials(accessKeyID, secretAccessKey, sessionToken, service, region string) *Signer {
	return &Signer{
		creds:   credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, sessionToken),
		signer:  awsv4.NewSigner(),
		Service: service,
		Region:  region,
	}
}

// Sign signs req in place with SigV4, using bodyHash as the payload hash
// (pass the hex-encoded SHA256 of the request body, or UnsignedPayload for
// streamed bodies).
func (s *Signer) Sign(ctx context.Context, req *http.Request, bodyHash string) error {
	creds, err := s.creds.Retrieve(ctx)
	if err != nil {
		return err
	}
	return s.signer.SignHTTP(ctx, creds, req, bodyHash, s.Service, s.Region, time.Now())
}

// HashBody returns the hex-encoded SHA256 of body, the payload hash SigV4
// signing requires.
func HashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// UnsignedPayload is the sentinel SigV4 uses for bodies that aren't
// signed (streamed uploads where the full content isn't available
// up-front).
const UnsignedPayload = "UNSIGNED-PAYLOAD"
