package fetch

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const GeoLiteURL = "https://download.maxmind.com/geoip/databases/GeoLite2-City/download?suffix=tar.gz"

var ErrMissingCredentials = errors.New("maxmind account id and license key are required")

// GeoIPJob builds the authenticated download of the GeoLite2 City archive.
func GeoIPJob(accountID, licenseKey, archivePath string) (Job, error) {
	if accountID == "" || licenseKey == "" {
		return Job{}, ErrMissingCredentials
	}
	auth := base64.StdEncoding.EncodeToString([]byte(accountID + ":" + licenseKey))
	return Job{
		URL:    GeoLiteURL,
		Dest:   archivePath,
		Header: http.Header{"Authorization": []string{"Basic " + auth}},
	}, nil
}

// UpdateGeoIP downloads the GeoLite2 archive and installs the .mmdb file it
// contains at dest.
func UpdateGeoIP(ctx context.Context, p *Pool, accountID, licenseKey, dest string) error {
	archive := dest + ".tar.gz"
	job, err := GeoIPJob(accountID, licenseKey, archive)
	if err != nil {
		return err
	}
	defer os.Remove(archive)

	results, err := p.Fetch(ctx, []Job{job})
	if err != nil {
		return err
	}
	if results[0].Err != nil {
		return results[0].Err
	}
	return ExtractFile(archive, ".mmdb", dest)
}

// ExtractFile copies the first entry of a .tar.gz archive whose name ends
// with suffix to dest.
func ExtractFile(archive, suffix, dest string) error {
	f, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("read gzip: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("no %s file in %s", suffix, filepath.Base(archive))
		}
		if err != nil {
			return fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !strings.HasSuffix(hdr.Name, suffix) {
			continue
		}
		_, err = writeFile(dest, tr)
		return err
	}
}
