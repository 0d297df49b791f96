package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Idiomas ADM API",
        "description": "Enrollment validation and academic scoring for the language-school administration portal",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Staff authentication"},
        {"name": "Cycles", "description": "Course cycles and exports"},
        {"name": "Enrollments", "description": "Enrollment listings and detail"},
        {"name": "Validation", "description": "Staff validation workflow and pending counters"},
        {"name": "Attendance", "description": "Attendance percentages"},
        {"name": "Grades", "description": "Grade components and summaries"},
        {"name": "Proofs", "description": "Payment and exemption evidence"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a staff user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cycles": {
            "get": {
                "tags": ["Cycles"],
                "summary": "List course cycles",
                "parameters": [
                    {"name": "language", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cycles/{id}": {
            "get": {
                "tags": ["Cycles"],
                "summary": "Get one course cycle",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cycles/{id}/pending-count": {
            "get": {
                "tags": ["Validation"],
                "summary": "Count enrollments awaiting validation in one cycle",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "refresh", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cycles/{id}/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance percentages for several enrollments",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "enrollmentIds", "in": "query", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cycles/{id}/enrollments/{enrollmentId}/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance percentage for one enrollment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "enrollmentId", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cycles/{id}/export": {
            "get": {
                "tags": ["Cycles"],
                "summary": "Export the validation queue or academic summary",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "report", "in": "query", "required": true, "type": "string", "enum": ["validation-queue", "academic-summary"]},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered document"}
                }
            }
        },
        "/validation/pending-counts": {
            "get": {
                "tags": ["Validation"],
                "summary": "Count pending validations across cycles",
                "parameters": [
                    {"name": "cycleIds", "in": "query", "type": "string"},
                    {"name": "refresh", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments",
                "parameters": [
                    {"name": "cycleId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "kind", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Get one enrollment with payment detail and proofs",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}/approve": {
            "post": {
                "tags": ["Validation"],
                "summary": "Approve an enrollment awaiting validation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already decided", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}/reject": {
            "post": {
                "tags": ["Validation"],
                "summary": "Reject an enrollment awaiting validation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already decided", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}/cancel": {
            "post": {
                "tags": ["Validation"],
                "summary": "Cancel an undecided enrollment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already decided", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}/payment-detail": {
            "put": {
                "tags": ["Validation"],
                "summary": "Correct the payment detail of a payment-kind enrollment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PaymentDetailRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "Grade summary for one enrollment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Grades"],
                "summary": "Record grade components for one enrollment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveGradeComponentsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}/proofs": {
            "get": {
                "tags": ["Proofs"],
                "summary": "List proof files attached to an enrollment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Proofs"],
                "summary": "Attach a proof file to an enrollment",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "kind", "in": "formData", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/proofs/{id}/url": {
            "get": {
                "tags": ["Proofs"],
                "summary": "Issue a short-lived download token for a proof file",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/proof-downloads": {
            "get": {
                "tags": ["Proofs"],
                "summary": "Download a proof file with a signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File content"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RejectRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string", "minLength": 6, "maxLength": 300}
            },
            "required": ["reason"]
        },
        "PaymentDetailRequest": {
            "type": "object",
            "properties": {
                "reference": {"type": "string"},
                "amount": {"type": "integer", "description": "Minor currency units, must be positive"},
                "paid_at": {"type": "string", "format": "date-time"}
            },
            "required": ["reference", "amount", "paid_at"]
        },
        "SaveGradeComponentsRequest": {
            "type": "object",
            "properties": {
                "midterm_exam": {"type": "number", "maximum": 80},
                "midterm_continuous": {"type": "number", "maximum": 20},
                "final_exam": {"type": "number", "maximum": 60},
                "final_continuous": {"type": "number", "maximum": 20},
                "final_project": {"type": "number", "maximum": 20}
            }
        },
        "EnrollmentView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "cycle_id": {"type": "string"},
                "student_id": {"type": "string"},
                "student_name": {"type": "string"},
                "student_email": {"type": "string"},
                "kind": {"type": "string", "enum": ["payment", "exemption"]},
                "raw_status": {"type": "string"},
                "display_status": {"type": "string", "enum": ["registered", "pre-enrolled", "confirmed", "rejected", "cancelled"]},
                "status_label": {"type": "string"},
                "payment_detail": {"$ref": "#/definitions/PaymentDetailRequest"},
                "rejection_reason": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "PendingCount": {
            "type": "object",
            "properties": {
                "cycle_id": {"type": "string"},
                "count": {"type": "integer"},
                "partial": {"type": "boolean"},
                "refreshed_at": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
