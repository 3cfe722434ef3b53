package service

import (
	"errors"
	"strings"

	"github.com/kizunaapp/kizuna/internal/domain"
	"github.com/kizunaapp/kizuna/internal/storage"
)

type GroupService struct {
	storage *storage.Storage
}

func NewGroupService(s *storage.Storage) *GroupService {
	return &GroupService{storage: s}
}

func (s *GroupService) Create(g *domain.Group) error {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return errors.New("group name cannot be empty")
	}
	if g.Category == "" {
		g.Category = domain.CategoryPrivate
	}
	return s.storage.CreateGroup(g)
}

func (s *GroupService) Get(id int64) (*domain.Group, error) {
	return s.storage.GetGroup(id)
}

func (s *GroupService) Update(g *domain.Group) error {
	return s.storage.UpdateGroup(g)
}

func (s *GroupService) Delete(id int64) error {
	return s.storage.DeleteGroup(id)
}

func (s *GroupService) List() ([]*domain.Group, error) {
	return s.storage.ListGroups()
}

func (s *GroupService) AddMember(groupID, contactID int64) error {
	return s.storage.AddGroupMember(groupID, contactID)
}

func (s *GroupService) RemoveMember(groupID, contactID int64) error {
	return s.storage.RemoveGroupMember(groupID, contactID)
}

func (s *GroupService) Members(groupID int64) ([]*domain.Contact, error) {
	return s.storage.ListGroupMembers(groupID)
}

func (s *GroupService) Events(groupID int64) ([]*domain.CalendarEvent, error) {
	return s.storage.ListEventsForGroup(groupID)
}
