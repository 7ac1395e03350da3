/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package flowmgt provides the project management service implementation.
package flowmgt

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/asgardeo/raider/internal/flow/constants"
	"github.com/asgardeo/raider/internal/flow/definition"
	"github.com/asgardeo/raider/internal/system/error/serviceerror"
	"github.com/asgardeo/raider/internal/system/log"
)

// FlowMgtServiceInterface defines the interface for the project management service.
type FlowMgtServiceInterface interface {
	Init(directory string) error
	RegisterProject(project *definition.Project)
	GetProject(name string) (*definition.Project, *serviceerror.ServiceError)
	ProjectNames() []string
}

// FlowMgtService keeps the projects loaded from a project directory.
type FlowMgtService struct {
	projects map[string]*definition.Project
	mu       sync.RWMutex
}

// NewFlowMgtService creates an empty service.
func NewFlowMgtService() *FlowMgtService {
	return &FlowMgtService{
		projects: make(map[string]*definition.Project),
	}
}

// Init loads every project file of the directory. Files that fail to load are skipped with a
// warning so that one broken project does not hide the others.
func (s *FlowMgtService) Init(directory string) error {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "FlowMgtService"))
	logger.Debug("Initializing the project management service")

	if directory == "" {
		logger.Info("Project directory is not set. No projects will be loaded.")
		return nil
	}
	directory = filepath.Clean(directory)

	files, err := os.ReadDir(directory)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("Project directory does not exist. No projects will be loaded.",
				log.String("directory", directory))
			return nil
		}
		return fmt.Errorf("failed to read project directory %s: %w", directory, err)
	}

	loaded := 0
	for _, file := range files {
		if file.IsDir() || !isProjectFile(file.Name()) {
			logger.Debug("Skipping non-project file or directory",
				log.String("fileName", file.Name()), log.Bool("isDir", file.IsDir()))
			continue
		}
		filePath := filepath.Join(directory, file.Name())

		project, err := definition.Load(filePath)
		if err != nil {
			logger.Warn("Failed to load project file", log.String("filePath", filePath), log.Error(err))
			continue
		}

		if logger.IsDebugEnabled() {
			jsonString, err := project.Graph.ToJSON()
			if err != nil {
				logger.Warn("Failed to convert flow graph to JSON", log.String("filePath", filePath), log.Error(err))
			} else {
				logger.Debug("Project loaded successfully", log.String("project", project.Name),
					log.String("json", jsonString))
			}
		}
		s.RegisterProject(project)
		loaded++
	}

	logger.Debug("Project management service initialized", log.Int("projectCount", loaded))
	return nil
}

// RegisterProject registers a project by its name, replacing a project of the same name.
func (s *FlowMgtService) RegisterProject(project *definition.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.Name] = project
}

// GetProject retrieves a project by its name.
func (s *FlowMgtService) GetProject(name string) (*definition.Project, *serviceerror.ServiceError) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	project, ok := s.projects[name]
	if !ok {
		return nil, constants.ErrorProjectNotFound.WithDescription("project not found: " + name)
	}
	return project, nil
}

// ProjectNames returns the registered project names in sorted order.
func (s *FlowMgtService) ProjectNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.projects))
	for name := range s.projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isProjectFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range constants.ProjectFileExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

var _ FlowMgtServiceInterface = (*FlowMgtService)(nil)
