package backend

import "net/url"

// ProjectPath is {project}/project.
func ProjectPath(project string) string {
	return url.PathEscape(project) + "/project"
}

// AttributesPath is {project}/attribute.
func AttributesPath(project string) string {
	return url.PathEscape(project) + "/attribute"
}

// AttributePath is {project}/attribute/{id}.
func AttributePath(project, id string) string {
	return AttributesPath(project) + "/" + url.PathEscape(id)
}
