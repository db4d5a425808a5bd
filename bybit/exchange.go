package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/lukasz-zimnoch/ladder"
	fastshot "github.com/opus-domini/fast-shot"
	"github.com/opus-domini/fast-shot/constant/mime"
	"net/url"
	"strconv"
	"time"
)

const (
	exchangeName   = "bybit"
	requestTimeout = 1 * time.Minute

	CategoryLinear    = "linear"
	DefaultRecvWindow = "10000"

	headerAPIKey     = "X-BAPI-API-KEY"
	headerSign       = "X-BAPI-SIGN"
	headerSignType   = "X-BAPI-SIGN-TYPE"
	headerTimestamp  = "X-BAPI-TIMESTAMP"
	headerRecvWindow = "X-BAPI-RECV-WINDOW"
)

type Config struct {
	ApiKey         string
	SecretKey      string
	RecvWindow     string
	Category       string
	KlineURL       string
	BatchOrderURL  string
	BatchCancelURL string
	InstrumentsURL string
}

type ExchangeService struct {
	config            *Config
	klineClient       fastshot.ClientHttpMethods
	batchOrderClient  fastshot.ClientHttpMethods
	batchCancelClient fastshot.ClientHttpMethods
	instrumentsClient fastshot.ClientHttpMethods
	signer            *Signer
	now               func() time.Time
}

func NewExchangeService(config *Config) (*ExchangeService, error) {
	for name, rawURL := range map[string]string{
		"kline":        config.KlineURL,
		"batch order":  config.BatchOrderURL,
		"batch cancel": config.BatchCancelURL,
	} {
		if _, err := url.ParseRequestURI(rawURL); err != nil {
			return nil, ladder.NewError(
				ladder.KindConfigMissing,
				"create exchange service",
				fmt.Errorf("invalid %v url [%v]: [%v]", name, rawURL, err),
			)
		}
	}

	if len(config.RecvWindow) == 0 {
		config.RecvWindow = DefaultRecvWindow
	}

	if len(config.Category) == 0 {
		config.Category = CategoryLinear
	}

	exchangeService := &ExchangeService{
		config:            config,
		klineClient:       setupHttpClient(config.KlineURL),
		batchOrderClient:  setupHttpClient(config.BatchOrderURL),
		batchCancelClient: setupHttpClient(config.BatchCancelURL),
		signer:            NewSigner(config.ApiKey, config.SecretKey, config.RecvWindow),
		now:               time.Now,
	}

	if len(config.InstrumentsURL) > 0 {
		exchangeService.instrumentsClient = setupHttpClient(config.InstrumentsURL)
	}

	return exchangeService, nil
}

// setupHttpClient binds a client to one full endpoint URL; requests are
// sent with an empty path so the URL and its query are used as configured.
func setupHttpClient(endpointURL string) fastshot.ClientHttpMethods {
	return fastshot.NewClient(endpointURL).
		Header().AddAccept(mime.JSON).
		Build()
}

func (es *ExchangeService) ExchangeName() string {
	return exchangeName
}

func (es *ExchangeService) get(
	ctx context.Context,
	op string,
	client fastshot.ClientHttpMethods,
	query map[string]string,
) (*Response, error) {
	requestCtx, cancelRequestCtx := context.WithTimeout(ctx, requestTimeout)
	defer cancelRequestCtx()

	response, err := client.
		GET("").
		Context().Set(requestCtx).
		Query().SetParams(query).
		Send()

	return es.decode(op, response, err)
}

// postSigned sends the payload with the authentication headers. The
// signature covers exactly the bytes written to the request body.
func (es *ExchangeService) postSigned(
	ctx context.Context,
	op string,
	client fastshot.ClientHttpMethods,
	payload interface{},
) (*Response, error) {
	timestamp := strconv.FormatInt(es.now().UnixMilli(), 10)

	body, signature, err := es.signer.SignPayload(timestamp, payload)
	if err != nil {
		return nil, err
	}

	requestCtx, cancelRequestCtx := context.WithTimeout(ctx, requestTimeout)
	defer cancelRequestCtx()

	response, err := client.
		POST("").
		Context().Set(requestCtx).
		Header().Add(headerAPIKey, es.config.ApiKey).
		Header().Add(headerSign, signature).
		Header().Add(headerSignType, signTypeHMAC).
		Header().Add(headerTimestamp, timestamp).
		Header().Add(headerRecvWindow, es.config.RecvWindow).
		Header().AddContentType(mime.JSON).
		Body().AsString(string(body)).
		Send()

	return es.decode(op, response, err)
}

func (es *ExchangeService) decode(
	op string,
	response *fastshot.Response,
	err error,
) (*Response, error) {
	if err != nil {
		return nil, ladder.NewError(ladder.KindTransport, op, err)
	}

	body, err := response.Body().AsBytes()
	if err != nil {
		return nil, ladder.NewError(ladder.KindTransport, op, err)
	}

	if response.Status().IsError() {
		return nil, ladder.Errorf(
			ladder.KindTransport,
			op,
			"unexpected status [%v]: [%s]",
			response.Status().Code(),
			body,
		)
	}

	var envelope Response
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, ladder.NewError(
			ladder.KindDecode,
			op,
			fmt.Errorf("could not decode envelope: [%v]", err),
		)
	}

	return &envelope, nil
}

func parseMilliseconds(value string) (time.Time, error) {
	milliseconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	return time.Unix(0, milliseconds*int64(time.Millisecond)), nil
}
