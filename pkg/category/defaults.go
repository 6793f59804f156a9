// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package category

// 📚 Defaults returns the built-in category definitions used when the
// configuration does not override them. The order matters: it fixes the
// first-match-wins resolution for user overrides layered on top.
func Defaults() []Definition {
	return []Definition{
		{Name: "documents", Extensions: []string{
			".doc", ".docx", ".docm", ".pdf", ".rtf", ".txt", ".md", ".markdown",
			".odt", ".ott", ".pages", ".tex", ".wpd",
		}},
		{Name: "spreadsheets", Extensions: []string{
			".xls", ".xlsx", ".xlsm", ".csv", ".tsv", ".ods", ".numbers",
		}},
		{Name: "presentations", Extensions: []string{
			".ppt", ".pptx", ".pptm", ".pps", ".ppsx", ".odp", ".key",
		}},
		{Name: "images", Extensions: []string{
			".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".tif", ".svg",
			".heic", ".heif", ".webp", ".ico", ".raw", ".cr2", ".nef", ".arw",
			".dng", ".psd",
		}},
		{Name: "videos", Extensions: []string{
			".mp4", ".avi", ".mov", ".mkv", ".wmv", ".flv", ".webm", ".m4v",
			".mpg", ".mpeg", ".3gp", ".ts", ".vob",
		}},
		{Name: "audio", Extensions: []string{
			".mp3", ".wav", ".flac", ".aac", ".ogg", ".m4a", ".wma", ".aiff",
			".opus", ".mid", ".midi",
		}},
		{Name: "archives", Extensions: []string{
			".zip", ".rar", ".7z", ".tar", ".gz", ".bz2", ".xz", ".tgz",
			".iso", ".dmg", ".cab",
		}},
		{Name: "email", Extensions: []string{
			".eml", ".emlx", ".msg", ".pst", ".ost", ".mbox",
		}},
		{Name: "databases", Extensions: []string{
			".db", ".sqlite", ".sqlite3", ".sql", ".mdb", ".accdb", ".dbf",
		}},
		{Name: "code", Extensions: []string{
			".py", ".js", ".jsx", ".tsx", ".html", ".htm", ".css", ".scss",
			".xml", ".php", ".cpp", ".cc", ".c", ".h", ".hpp", ".java", ".cs",
			".rs", ".go", ".rb", ".swift", ".kt", ".lua", ".pl", ".sh", ".bash",
			".ps1", ".bat",
		}},
		{Name: "config", Extensions: []string{
			".ini", ".conf", ".cfg", ".config", ".toml", ".yaml", ".yml",
			".json", ".plist", ".env", ".properties",
		}},
		{Name: "executables", Extensions: []string{
			".exe", ".msi", ".dll", ".so", ".deb", ".rpm", ".appimage", ".jar",
		}},
		{Name: "fonts", Extensions: []string{
			".ttf", ".otf", ".woff", ".woff2", ".eot",
		}},
		{Name: "ebooks", Extensions: []string{
			".epub", ".mobi", ".azw", ".azw3", ".fb2", ".djvu", ".cbz", ".cbr",
		}},
		{Name: "certificates", Extensions: []string{
			".cer", ".crt", ".der", ".p12", ".pfx", ".pem", ".gpg",
		}},
		{Name: "backups", Extensions: []string{
			".bak", ".backup", ".old", ".orig", ".tmp", ".swp",
		}},
		{Name: "logs", Extensions: []string{
			".log", ".trace", ".dmp", ".crash",
		}},
		{Name: "virtual", Extensions: []string{
			".vmdk", ".vdi", ".vhd", ".vhdx", ".qcow2", ".ova", ".img",
		}},
		{Name: "subtitles", Extensions: []string{
			".srt", ".sub", ".ass", ".ssa", ".vtt",
		}},
		{Name: "torrents", Extensions: []string{
			".torrent", ".magnet",
		}},
	}
}
