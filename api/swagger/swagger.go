package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Placement Portal Interview API",
        "description": "Interview scheduling, approval and notification pipeline for the campus placement portal.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [
        {"BearerAuth": []}
    ],
    "tags": [
        {"name": "Interviews", "description": "Scheduling, approval and meeting references"},
        {"name": "Operations", "description": "Reminder trigger and probes"}
    ],
    "paths": {
        "/interviews": {
            "post": {
                "tags": ["Interviews"],
                "summary": "Schedule an interview",
                "description": "Coordinators create approved interviews and notify applicants at once; recruiters create pending interviews for their own jobs.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleInterviewRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or no valid applicants", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Job not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/interviews/pending": {
            "get": {
                "tags": ["Interviews"],
                "summary": "List interviews awaiting approval",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/interviews/{id}/approve": {
            "post": {
                "tags": ["Interviews"],
                "summary": "Approve a pending interview",
                "description": "Notifies every applicant and the recruiter. Delivery failures are reported in the payload, not as errors.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Interview already processed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/interviews/{id}/meeting-reference": {
            "put": {
                "tags": ["Interviews"],
                "summary": "Set the meeting link or location of an approved interview",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignMeetingReferenceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Interview is not approved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/interviews/mine": {
            "get": {
                "tags": ["Interviews"],
                "summary": "List my approved interviews",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/interviews/export": {
            "get": {
                "tags": ["Interviews"],
                "summary": "Export the approved interview schedule",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
                    {"name": "from", "in": "query", "type": "string", "description": "Range start (RFC3339 or YYYY-MM-DD)"},
                    {"name": "to", "in": "query", "type": "string", "description": "Range end (RFC3339 or YYYY-MM-DD)"}
                ],
                "responses": {
                    "200": {"description": "Export file", "schema": {"type": "file"}},
                    "400": {"description": "Invalid range or format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/internal/reminders/run": {
            "post": {
                "tags": ["Operations"],
                "summary": "Run one reminder tick now",
                "description": "The tick is idempotent and never re-sends a reminder.",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Reminders disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ScheduleInterviewRequest": {
            "type": "object",
            "properties": {
                "jobId": {"type": "string"},
                "dateTime": {"type": "string", "format": "date-time"},
                "applicantIds": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["jobId", "dateTime", "applicantIds"]
        },
        "AssignMeetingReferenceRequest": {
            "type": "object",
            "properties": {
                "reference": {"type": "string"}
            },
            "required": ["reference"]
        },
        "Interview": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "jobId": {"type": "string"},
                "recruiterId": {"type": "string"},
                "applicantIds": {"type": "array", "items": {"type": "string"}},
                "dateTime": {"type": "string", "format": "date-time"},
                "status": {"type": "string", "enum": ["PENDING", "APPROVED", "REJECTED"]},
                "coordinatorId": {"type": "string"},
                "meetingReference": {"type": "string"},
                "notifiedImminent": {"type": "boolean"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"},
                "approvedAt": {"type": "string", "format": "date-time"}
            }
        },
        "DeliveryResult": {
            "type": "object",
            "properties": {
                "recipientId": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "DeliverySummary": {
            "type": "object",
            "properties": {
                "stage": {"type": "string"},
                "attempted": {"type": "integer"},
                "sent": {"type": "integer"},
                "failed": {"type": "integer"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/DeliveryResult"}}
            }
        },
        "ScheduleInterviewResponse": {
            "type": "object",
            "properties": {
                "interview": {"$ref": "#/definitions/Interview"},
                "notificationsSent": {"type": "boolean"},
                "awaitingApproval": {"type": "boolean"},
                "delivery": {"$ref": "#/definitions/DeliverySummary"}
            }
        },
        "ApproveInterviewResponse": {
            "type": "object",
            "properties": {
                "interview": {"$ref": "#/definitions/Interview"},
                "delivery": {"$ref": "#/definitions/DeliverySummary"}
            }
        },
        "ReminderRunResponse": {
            "type": "object",
            "properties": {
                "ranAt": {"type": "string", "format": "date-time"},
                "candidates": {"type": "integer"},
                "notified": {"type": "integer"},
                "failed": {"type": "integer"},
                "missingReference": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
