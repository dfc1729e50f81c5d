package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/tastetab/internal/bootstrap"
	"github.com/example/tastetab/internal/config"
	"github.com/example/tastetab/internal/models"
	"github.com/example/tastetab/internal/services"
	"github.com/example/tastetab/internal/store"
	"github.com/example/tastetab/internal/utils"
)

const testSecret = "routes-test-secret"

func init() {
	utils.PasswordCost = bcrypt.MinCost
}

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

type fakeGateway struct {
	enabled      bool
	createOrder  func(ctx context.Context, req services.OrderRequest) (*services.Order, error)
	fetchQRCode  func(ctx context.Context, id string) (*services.QRCode, error)
	fetchPayment func(ctx context.Context, id string) (*services.Payment, error)
	verifySig    func(orderID, paymentID, signature string) bool
}

func (g *fakeGateway) Enabled() bool { return g.enabled }

func (g *fakeGateway) CreateOrder(ctx context.Context, req services.OrderRequest) (*services.Order, error) {
	return g.createOrder(ctx, req)
}

func (g *fakeGateway) FetchQRCode(ctx context.Context, id string) (*services.QRCode, error) {
	return g.fetchQRCode(ctx, id)
}

func (g *fakeGateway) FetchPayment(ctx context.Context, id string) (*services.Payment, error) {
	return g.fetchPayment(ctx, id)
}

func (g *fakeGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	if g.verifySig == nil {
		return true
	}
	return g.verifySig(orderID, paymentID, signature)
}

type fakeNotifier struct {
	bills    chan models.Bill
	payments chan services.Payment
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{bills: make(chan models.Bill, 8), payments: make(chan services.Payment, 8)}
}

func (n *fakeNotifier) NotifyNewBill(_ context.Context, bill *models.Bill) error {
	n.bills <- *bill
	return nil
}

func (n *fakeNotifier) NotifyPaymentCaptured(_ context.Context, payment *services.Payment) error {
	n.payments <- *payment
	return nil
}

type testEnv struct {
	app      *fiber.App
	store    store.Store
	cfg      *config.Config
	mailer   *fakeMailer
	gateway  *fakeGateway
	notifier *fakeNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := bootstrap.OpenStore(context.Background(), "file:"+name+"?mode=memory&cache=shared", "silent")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	cfg := &config.Config{
		JWTSecret:             testSecret,
		TokenExpires:          time.Hour,
		CORSOrigins:           "*",
		RazorpayQRID:          "qr_test",
		RazorpayWebhookSecret: "whsec",
	}

	env := &testEnv{
		store:    st,
		cfg:      cfg,
		mailer:   &fakeMailer{},
		gateway:  &fakeGateway{enabled: true},
		notifier: newFakeNotifier(),
	}
	env.app = NewApp(Deps{
		Config:   cfg,
		Store:    st,
		Mailer:   env.mailer,
		Gateway:  env.gateway,
		Notifier: env.notifier,
	})
	return env
}

type response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r response) JSON(t *testing.T, dst any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, dst); err != nil {
		t.Fatalf("decode %q: %v", r.Body, err)
	}
}

func (r response) errorBody(t *testing.T) map[string]string {
	t.Helper()
	var body map[string]string
	r.JSON(t, &body)
	return body
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	return response{Status: resp.StatusCode, Header: resp.Header, Body: data}
}

// register creates an account over HTTP and logs it in, returning the token.
func (e *testEnv) register(t *testing.T, username string, role models.Role) string {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":        username,
		"email":           username + "@example.com",
		"password":        "Passw0rd!",
		"confirmPassword": "Passw0rd!",
		"role":            string(role),
	})
	if resp.Status != fiber.StatusCreated {
		t.Fatalf("register %s: %d %s", username, resp.Status, resp.Body)
	}
	return e.login(t, username+"@example.com", "Passw0rd!")
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	if resp.Status != fiber.StatusOK {
		t.Fatalf("login %s: %d %s", email, resp.Status, resp.Body)
	}
	var body struct {
		Token string `json:"token"`
	}
	resp.JSON(t, &body)
	return body.Token
}
