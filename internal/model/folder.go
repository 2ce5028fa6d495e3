package model

// Folder groups projects in the sidebar. A project absent from every
// folder is uncategorized.
type Folder struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	ProjectIDs []string `json:"projectIds"`
}

// Clone returns a deep copy of the folder.
func (f Folder) Clone() Folder {
	f.ProjectIDs = cloneIDs(f.ProjectIDs)
	return f
}

// FolderOf returns the id of the folder containing projectID, or "" when
// the project is uncategorized.
func FolderOf(folders map[string]Folder, projectID string) string {
	for id, f := range folders {
		if IndexOf(f.ProjectIDs, projectID) >= 0 {
			return id
		}
	}
	return ""
}
