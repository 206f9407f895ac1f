package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
)

type Location struct {
	Latitude  float64
	Longitude float64
	City      string
	Region    string
	Country   string
}

// Result is the tagged outcome of a lookup: a resolved location or Unknown.
type Result struct {
	Resolved bool
	Location Location
}

func Unknown() Result              { return Result{} }
func Resolved(loc Location) Result { return Result{Resolved: true, Location: loc} }

// Resolver maps network addresses to approximate locations. The offline
// database is the primary path; when it is not configured or failed to
// load, lookups go to the remote service under the client timeout.
type Resolver struct {
	reader      *geoip2.Reader
	client      *http.Client
	fallbackURL string
	log         *zap.Logger
}

func NewResolver(dbPath, fallbackURL string, timeout time.Duration, log *zap.Logger) *Resolver {
	r := &Resolver{
		client:      &http.Client{Timeout: timeout},
		fallbackURL: strings.TrimRight(fallbackURL, "/"),
		log:         log,
	}

	if dbPath != "" {
		reader, err := geoip2.Open(dbPath)
		if err != nil {
			log.Warn("offline geo database unavailable, falling back to remote service",
				zap.String("path", dbPath), zap.Error(err))
		} else {
			r.reader = reader
			log.Info("offline geo database loaded", zap.String("path", dbPath))
		}
	}
	return r
}

func (r *Resolver) Close() error {
	if r.reader != nil {
		return r.reader.Close()
	}
	return nil
}

// Resolve never returns an error: every failure along the chain degrades
// to Unknown, and the remote path is bounded by the client timeout.
func (r *Resolver) Resolve(ctx context.Context, ip string) Result {
	if r.reader != nil {
		return r.lookupLocal(ip)
	}
	return r.lookupRemote(ctx, ip)
}

func (r *Resolver) lookupLocal(ip string) Result {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Unknown()
	}

	rec, err := r.reader.City(parsed)
	if err != nil {
		return Unknown()
	}

	loc := Location{
		Latitude:  rec.Location.Latitude,
		Longitude: rec.Location.Longitude,
		City:      rec.City.Names["en"],
		Country:   rec.Country.Names["en"],
	}
	if len(rec.Subdivisions) > 0 {
		loc.Region = rec.Subdivisions[0].Names["en"]
	}

	// The reader returns an empty record, not an error, for addresses it
	// has never seen.
	if loc.Country == "" && loc.Latitude == 0 && loc.Longitude == 0 {
		return Unknown()
	}
	return Resolved(loc)
}

type fallbackResponse struct {
	Status     string  `json:"status"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	City       string  `json:"city"`
	RegionName string  `json:"regionName"`
	Country    string  `json:"country"`
}

func (r *Resolver) lookupRemote(ctx context.Context, ip string) Result {
	url := fmt.Sprintf("%s/%s?fields=status,message,lat,lon,city,regionName,country", r.fallbackURL, ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Unknown()
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Debug("geo fallback request failed", zap.String("ip", ip), zap.Error(err))
		return Unknown()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Unknown()
	}

	var body fallbackResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Unknown()
	}
	if body.Status != "success" {
		return Unknown()
	}

	return Resolved(Location{
		Latitude:  body.Lat,
		Longitude: body.Lon,
		City:      body.City,
		Region:    body.RegionName,
		Country:   body.Country,
	})
}
