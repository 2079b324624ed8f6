// Package hub reads the legacy Woltlab database the Forge imports from.
package hub

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	log "github.com/sirupsen/logrus"

	ports "forge-service/internal/core/ports/output"
)

const (
	// Woltlab group ids of the staff groups.
	adminGroupID     = 4
	moderatorGroupID = 5

	sptLabelGroup     = "SPT Version"
	versionObjectType = "com.woltlab.filebase.file.version"

	// filebase1_file_option ids.
	optionSourceCode = 5
	optionAIContent  = 7
	optionAds        = 8

	// filebase1_file_version_option id of the VirusTotal link.
	versionOptionVirusTotal = 1

	englishLanguageID = 1
)

// Open connects to the Hub database. parseTime is forced so DATETIME
// columns scan into time.Time.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse hub dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("hub connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping hub db: %w", err)
	}

	log.WithFields(log.Fields{"addr": cfg.Addr, "db": cfg.DBName}).Info("Connected to Hub database")
	return db, nil
}

type source struct {
	db *sql.DB
}

func NewSource(db *sql.DB) ports.HubSource {
	return &source{db: db}
}

func (s *source) Licenses(ctx context.Context) ([]ports.HubLicense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT licenseID, licenseName, COALESCE(licenseURL, '') FROM filebase1_license ORDER BY licenseID`)
	if err != nil {
		return nil, fmt.Errorf("query hub licenses: %w", err)
	}
	defer rows.Close()

	var licenses []ports.HubLicense
	for rows.Next() {
		var l ports.HubLicense
		if err := rows.Scan(&l.LicenseID, &l.Name, &l.URL); err != nil {
			return nil, fmt.Errorf("scan hub license: %w", err)
		}
		licenses = append(licenses, l)
	}
	return licenses, rows.Err()
}

func (s *source) Users(ctx context.Context, afterID int64, limit int) ([]ports.HubUser, error) {
	query := `
		SELECT
			u.userID, u.username, u.email, u.password, u.banned,
			COALESCE(u.banReason, ''), u.banExpires, u.activationCode = 0,
			COALESCE(o.userOption1, ''),
			COALESCE(a.avatarID, 0), COALESCE(a.fileHash, ''), COALESCE(a.avatarExtension, ''),
			COALESCE(u.coverPhotoHash, ''), COALESCE(u.coverPhotoExtension, ''),
			EXISTS (SELECT 1 FROM wcf1_user_to_group g WHERE g.userID = u.userID AND g.groupID = ?),
			EXISTS (SELECT 1 FROM wcf1_user_to_group g WHERE g.userID = u.userID AND g.groupID = ?),
			u.registrationDate
		FROM wcf1_user u
		LEFT JOIN wcf1_user_option_value o ON o.userID = u.userID
		LEFT JOIN wcf1_user_avatar a ON a.avatarID = u.avatarID
		WHERE u.userID > ?
		ORDER BY u.userID
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, adminGroupID, moderatorGroupID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("query hub users: %w", err)
	}
	defer rows.Close()

	var users []ports.HubUser
	for rows.Next() {
		var (
			u                     ports.HubUser
			avatarID              int64
			avatarHash, avatarExt string
			coverHash, coverExt   string
			registered            int64
		)
		if err := rows.Scan(
			&u.UserID, &u.Username, &u.Email, &u.Password, &u.Banned,
			&u.BanReason, &u.BanExpires, &u.Activated,
			&u.AboutMe,
			&avatarID, &avatarHash, &avatarExt,
			&coverHash, &coverExt,
			&u.IsAdmin, &u.IsModerator,
			&registered,
		); err != nil {
			return nil, fmt.Errorf("scan hub user: %w", err)
		}
		u.AvatarPath = AvatarPath(avatarID, avatarHash, avatarExt)
		u.CoverPath = CoverPhotoPath(u.UserID, coverHash, coverExt)
		u.RegisteredAt = unixTime(registered)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *source) Follows(ctx context.Context, afterID int64, limit int) ([]ports.HubFollow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT followID, userID, followUserID, time
		FROM wcf1_user_follow
		WHERE followID > ?
		ORDER BY followID
		LIMIT ?
	`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("query hub follows: %w", err)
	}
	defer rows.Close()

	var follows []ports.HubFollow
	for rows.Next() {
		var (
			f  ports.HubFollow
			at int64
		)
		if err := rows.Scan(&f.FollowID, &f.UserID, &f.FollowUserID, &at); err != nil {
			return nil, fmt.Errorf("scan hub follow: %w", err)
		}
		f.CreatedAt = unixTime(at)
		follows = append(follows, f)
	}
	return follows, rows.Err()
}

func (s *source) SptLabels(ctx context.Context) ([]ports.HubLabel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.labelID, l.label, COALESCE(l.cssClassName, '')
		FROM wcf1_label l
		JOIN wcf1_label_group g ON g.groupID = l.groupID
		WHERE g.groupName = ?
		ORDER BY l.labelID
	`, sptLabelGroup)
	if err != nil {
		return nil, fmt.Errorf("query hub labels: %w", err)
	}
	defer rows.Close()

	var labels []ports.HubLabel
	for rows.Next() {
		var l ports.HubLabel
		if err := rows.Scan(&l.LabelID, &l.Label, &l.CSSClass); err != nil {
			return nil, fmt.Errorf("scan hub label: %w", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

func (s *source) Mods(ctx context.Context, afterID int64, limit int) ([]ports.HubMod, error) {
	query := `
		SELECT
			f.fileID, COALESCE(f.userID, 0),
			COALESCE(c.subject, ''), COALESCE(c.teaser, ''), COALESCE(c.message, ''),
			COALESCE(f.iconHash, ''), COALESCE(f.iconExtension, ''),
			COALESCE(f.licenseID, 0), COALESCE(f.licenseName, ''),
			f.isFeatured, f.isDisabled, f.isDeleted, f.downloads,
			f.time, f.lastChangeTime
		FROM filebase1_file f
		LEFT JOIN filebase1_file_content c ON c.contentID = (
			SELECT MIN(c2.contentID) FROM filebase1_file_content c2
			WHERE c2.fileID = f.fileID AND (c2.languageID IS NULL OR c2.languageID = ?)
		)
		WHERE f.fileID > ?
		ORDER BY f.fileID
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, englishLanguageID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("query hub mods: %w", err)
	}
	defer rows.Close()

	var mods []ports.HubMod
	for rows.Next() {
		var (
			m                 ports.HubMod
			iconHash, iconExt string
			created, changed  int64
		)
		if err := rows.Scan(
			&m.FileID, &m.UserID,
			&m.Subject, &m.Teaser, &m.Message,
			&iconHash, &iconExt,
			&m.LicenseID, &m.LicenseName,
			&m.IsFeatured, &m.IsDisabled, &m.IsDeleted, &m.DownloadCount,
			&created, &changed,
		); err != nil {
			return nil, fmt.Errorf("scan hub mod: %w", err)
		}
		m.IconPath = FileIconPath(m.FileID, iconHash, iconExt)
		m.CreatedAt = unixTime(created)
		m.UpdatedAt = unixTime(changed)
		if m.UpdatedAt.IsZero() {
			m.UpdatedAt = m.CreatedAt
		}
		mods = append(mods, m)
	}
	return mods, rows.Err()
}

func (s *source) ModAuthors(ctx context.Context, fileIDs []int64) (map[int64][]int64, error) {
	authors := make(map[int64][]int64, len(fileIDs))
	if len(fileIDs) == 0 {
		return authors, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT fileID, userID FROM filebase1_file_author WHERE fileID IN (`+placeholders(len(fileIDs))+`) ORDER BY fileID, userID`,
		int64Args(fileIDs)...)
	if err != nil {
		return nil, fmt.Errorf("query hub mod authors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fileID, userID int64
		if err := rows.Scan(&fileID, &userID); err != nil {
			return nil, fmt.Errorf("scan hub mod author: %w", err)
		}
		authors[fileID] = append(authors[fileID], userID)
	}
	return authors, rows.Err()
}

func (s *source) ModOptions(ctx context.Context, fileIDs []int64) (map[int64]ports.HubModOptions, error) {
	options := make(map[int64]ports.HubModOptions, len(fileIDs))
	if len(fileIDs) == 0 {
		return options, nil
	}

	args := append(int64Args(fileIDs), optionSourceCode, optionAIContent, optionAds)
	rows, err := s.db.QueryContext(ctx, `
		SELECT fileID, optionID, COALESCE(optionValue, '')
		FROM filebase1_file_option_value
		WHERE fileID IN (`+placeholders(len(fileIDs))+`) AND optionID IN (?, ?, ?)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query hub mod options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			fileID, optionID int64
			value            string
		)
		if err := rows.Scan(&fileID, &optionID, &value); err != nil {
			return nil, fmt.Errorf("scan hub mod option: %w", err)
		}
		opts := options[fileID]
		switch optionID {
		case optionSourceCode:
			opts.SourceCodeLink = strings.TrimSpace(value)
		case optionAIContent:
			opts.ContainsAIContent = truthy(value)
		case optionAds:
			opts.ContainsAds = truthy(value)
		}
		options[fileID] = opts
	}
	return options, rows.Err()
}

func (s *source) ModVersions(ctx context.Context, afterID int64, limit int) ([]ports.HubModVersion, error) {
	query := `
		SELECT
			v.versionID, v.fileID, v.versionNumber,
			COALESCE(c.description, ''), COALESCE(v.downloadURL, ''),
			COALESCE(o.optionValue, ''),
			v.isDisabled, v.downloads, v.uploadTime
		FROM filebase1_file_version v
		LEFT JOIN filebase1_file_version_content c ON c.contentID = (
			SELECT MIN(c2.contentID) FROM filebase1_file_version_content c2
			WHERE c2.versionID = v.versionID AND (c2.languageID IS NULL OR c2.languageID = ?)
		)
		LEFT JOIN filebase1_file_version_option_value o
			ON o.versionID = v.versionID AND o.optionID = ?
		WHERE v.versionID > ?
		ORDER BY v.versionID
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, englishLanguageID, versionOptionVirusTotal, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("query hub mod versions: %w", err)
	}
	defer rows.Close()

	var versions []ports.HubModVersion
	for rows.Next() {
		var (
			v        ports.HubModVersion
			uploaded int64
		)
		if err := rows.Scan(
			&v.VersionID, &v.FileID, &v.VersionNumber,
			&v.Description, &v.DownloadURL,
			&v.VirusTotalURL,
			&v.IsDisabled, &v.DownloadCount, &uploaded,
		); err != nil {
			return nil, fmt.Errorf("scan hub mod version: %w", err)
		}
		v.UploadTime = unixTime(uploaded)
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *source) VersionLabels(ctx context.Context, versionIDs []int64) (map[int64][]string, error) {
	labels := make(map[int64][]string, len(versionIDs))
	if len(versionIDs) == 0 {
		return labels, nil
	}

	args := append([]interface{}{versionObjectType, sptLabelGroup}, int64Args(versionIDs)...)
	rows, err := s.db.QueryContext(ctx, `
		SELECT lo.objectID, l.label
		FROM wcf1_label_object lo
		JOIN wcf1_object_type ot ON ot.objectTypeID = lo.objectTypeID AND ot.objectType = ?
		JOIN wcf1_label l ON l.labelID = lo.labelID
		JOIN wcf1_label_group g ON g.groupID = l.groupID AND g.groupName = ?
		WHERE lo.objectID IN (`+placeholders(len(versionIDs))+`)
		ORDER BY lo.objectID, l.labelID
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query hub version labels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			versionID int64
			label     string
		)
		if err := rows.Scan(&versionID, &label); err != nil {
			return nil, fmt.Errorf("scan hub version label: %w", err)
		}
		labels[versionID] = append(labels[versionID], label)
	}
	return labels, rows.Err()
}

func (s *source) ModIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fileID FROM filebase1_file ORDER BY fileID`)
	if err != nil {
		return nil, fmt.Errorf("query hub mod ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan hub mod id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
