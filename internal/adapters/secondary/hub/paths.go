package hub

import "fmt"

// Woltlab shards uploaded images into directories named after the first two
// characters of the file hash. The paths below are relative to the Hub's
// public root and are fetched later by the asset downloader.

func AvatarPath(avatarID int64, hash, ext string) string {
	if avatarID == 0 || len(hash) < 2 || ext == "" {
		return ""
	}
	return fmt.Sprintf("images/avatars/%s/%d-%s.%s", hash[:2], avatarID, hash, ext)
}

func CoverPhotoPath(userID int64, hash, ext string) string {
	if len(hash) < 2 || ext == "" {
		return ""
	}
	return fmt.Sprintf("images/coverPhotos/%s/%d-%s.%s", hash[:2], userID, hash, ext)
}

func FileIconPath(fileID int64, hash, ext string) string {
	if len(hash) < 2 || ext == "" {
		return ""
	}
	return fmt.Sprintf("files/images/file/%s/%d.%s", hash[:2], fileID, ext)
}
