package gresty

import (
	"crypto/tls"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/proxy"

	"github.com/glibtools/restyjson/config"
	"github.com/glibtools/restyjson/serializer"
)

var RestyClient = new(Resty)

// Resty holds a resty client and its settings. The JSON slot is read on
// every body conversion, so replacing it affects requests made afterwards.
type Resty struct {
	Logger resty.Logger

	client     *resty.Client
	serializer serializer.Serializer
	userAgent  string
	mutex      sync.RWMutex
	once       sync.Once
}

// Apply copies the HTTP settings onto the client.
func (r *Resty) Apply(h config.HTTPSettings) *Resty {
	c := r.Client()
	if h.Timeout > 0 {
		c.SetTimeout(h.Timeout)
	}
	c.SetRetryCount(h.RetryCount)
	if h.RetryWait > 0 {
		c.SetRetryWaitTime(h.RetryWait)
	}
	if h.RetryMaxWait > 0 {
		c.SetRetryMaxWaitTime(h.RetryMaxWait)
	}
	if h.Proxy != "" {
		c.SetProxy(h.Proxy)
	}
	r.mutex.Lock()
	r.userAgent = h.UserAgent
	r.mutex.Unlock()
	return r
}

// Client ...Client
func (r *Resty) Client() *resty.Client { return r.lazyInit().client }

func (r *Resty) GetLogger() resty.Logger {
	if r.Logger == nil {
		r.Logger = &emptyLogger{}
	}
	return r.Logger
}

// JSONSerializer returns the serializer currently in the slot.
func (r *Resty) JSONSerializer() serializer.Serializer {
	r.lazyInit()
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.serializer
}

func (r *Resty) ResponseEnsureOK() *Resty {
	r.Client().OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		if resp.IsSuccess() {
			return nil
		}
		return newStatusError(resp, resp.String())
	})
	return r
}

// SetJSONSerializer replaces the serializer in the slot.
func (r *Resty) SetJSONSerializer(s serializer.Serializer) *Resty {
	r.lazyInit()
	r.mutex.Lock()
	r.serializer = s
	r.mutex.Unlock()
	return r
}

func (r *Resty) SetLogger(logger resty.Logger) {
	r.lazyInit()
	r.Logger = logger
	r.client.SetLogger(logger)
}

func (r *Resty) SetProxy(proxy string) *Resty {
	r.Client().SetProxy(proxy)
	return r
}

func (r *Resty) init() {
	c := resty.New()
	c.SetTransport(createTransport(nil))
	c.SetLogger(r.GetLogger())
	c.SetTimeout(time.Second * 20)
	c.SetRetryCount(3)
	c.SetRetryWaitTime(time.Millisecond * 300)
	c.SetRetryMaxWaitTime(time.Second * 2)
	c.SetHeaders(map[string]string{
		"Accept":        "application/json, */*",
		"Pragma":        "no-cache",
		"Cache-Control": "no-cache",
	})
	c.SetJSONMarshaler(r.marshalJSON)
	c.SetJSONUnmarshaler(r.unmarshalJSON)

	c.OnBeforeRequest(func(client *resty.Client, request *resty.Request) error {
		const ua = "User-Agent"
		if resty.IsStringEmpty(request.Header.Get(ua)) {
			request.SetHeader(ua, r.getUserAgent())
		}
		return nil
	})

	if r.serializer == nil {
		r.serializer = serializer.NewJSONSerializer(nil)
	}
	r.client = c
}

func (r *Resty) getUserAgent() string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if r.userAgent != "" {
		return r.userAgent
	}
	return RandUseragent()
}

// lazyInit ......
func (r *Resty) lazyInit() *Resty {
	r.once.Do(r.init)
	return r
}

func (r *Resty) marshalJSON(v interface{}) ([]byte, error) {
	text, err := r.JSONSerializer().Serialize(v)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

func (r *Resty) unmarshalJSON(data []byte, v interface{}) error {
	return r.JSONSerializer().Deserialize(string(data), v)
}

func AssignTransport(c *http.Client, fn func(t *http.Transport)) {
	t, err := HttpClientTransport(c)
	if err != nil {
		return
	}
	fn(t)
}

func Client() *resty.Client { return RestyClient.Client() }

func HttpClientTransport(c *http.Client) (*http.Transport, error) {
	if transport, ok := c.Transport.(*http.Transport); ok {
		return transport, nil
	}
	return nil, errors.New("current transport is not an *http.Transport instance")
}

func New() *Resty { return new(Resty).lazyInit() }

// RandUseragent ...
func RandUseragent() string {
	userAgents := []string{
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/104.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; WOW64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/61.0.3163.100 Safari/537.36",
		fmt.Sprintf("restyjson (%s; %s)", runtime.GOOS, runtime.Version()),
	}
	return userAgents[rand.Intn(len(userAgents))]
}

// SetTransportDialer ...
func SetTransportDialer(c *http.Client, dialer proxy.ContextDialer) {
	transportVal, err := HttpClientTransport(c)
	if err != nil {
		return
	}
	transportVal.DialContext = dialer.DialContext
}

func createTransport(localAddr net.Addr) *http.Transport {
	dialer := &net.Dialer{
		Timeout:       10 * time.Second,
		KeepAlive:     30 * time.Second,
		FallbackDelay: 500 * time.Millisecond,
	}
	if localAddr != nil {
		dialer.LocalAddr = localAddr
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   runtime.NumCPU() + 1,
		IdleConnTimeout:       29 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}
